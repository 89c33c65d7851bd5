// Package analysis characterizes recorded pendant runs.
//
//   - [PowerSpectrum]: windowed power spectrum of a sampled signal
//   - [DominantFrequency]: strongest non-DC frequency, i.e. the swing rate
//   - [BobPhase]: horizontal position against velocity of the bob
//   - [Crossings]: times the bob passes under the anchor
//
// # Swing Period
//
// A chain hanging from a still anchor swings like a pendulum. The bob's
// horizontal offset from the anchor carries that swing:
//
//	offsets := analysis.Offsets(anchors, bob)
//	f, _ := analysis.DominantFrequency(offsets, dt)
//	period := 1 / f
package analysis
