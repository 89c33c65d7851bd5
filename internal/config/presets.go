package config

import (
	"sort"

	"github.com/san-kum/pendant/internal/anchor"
)

// Presets are named tunings of the chain. Each starts from the defaults.
var Presets = map[string]*Config{
	"default": withChain(func(c *ChainConfig) {}),
	"stiff": withChain(func(c *ChainConfig) {
		c.Iterations = 50
	}),
	"elastic": withChain(func(c *ChainConfig) {
		c.Iterations = 4
	}),
	"heavy": withChain(func(c *ChainConfig) {
		c.Gravity = 6000
		c.Damping = 0.01
	}),
	"calm": withChain(func(c *ChainConfig) {
		c.Damping = 0.1
		c.RestThreshold = 0.2
	}),
	"long": withChain(func(c *ChainConfig) {
		c.Nodes = 48
		c.RestLength = 6
	}),
	"orbit": withAnchor(anchor.Spec{Kind: "circle", Radius: 80, Period: 2}),
	"sway":  withAnchor(anchor.Spec{Kind: "sway", Amplitude: 60, Frequency: 0.5}),
	"jolt":  withAnchor(anchor.Spec{Kind: "step", ToX: 150, At: 1}),
}

func withChain(tune func(*ChainConfig)) *Config {
	cfg := DefaultConfig()
	tune(&cfg.Chain)
	return cfg
}

func withAnchor(spec anchor.Spec) *Config {
	cfg := DefaultConfig()
	cfg.Anchor = spec
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	cfg.Preset = name
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
