// Package viz renders the pendant in a terminal.
//
// [Model] is a Bubble Tea model that drives a pendant at 60 frames per
// second. The mouse position becomes the anchor, the chain is drawn as lines
// on a Braille [Canvas] and the side panel shows the swing, link stretch and
// tunable parameters.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	U     - Load a bob image (type a path, Enter to confirm)
//	R     - Reset the bob image
//	C     - Re-hang the chain
//	Tab   - Select parameter; Up/Down tune it
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help
//
// The program must be started with tea.WithMouseAllMotion for the anchor to
// follow the mouse without a button held.
package viz
