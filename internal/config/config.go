package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pendant/internal/anchor"
	"github.com/san-kum/pendant/internal/chain"
)

const (
	DefaultDt       = 1.0 / 60
	DefaultDuration = 10.0
	DefaultImageDir = "~/.pendant/UserImages"
	DefaultDataDir  = ".pendant"
)

type Config struct {
	Preset   string      `yaml:"preset,omitempty"`
	Chain    ChainConfig `yaml:"chain"`
	Run      RunConfig   `yaml:"run"`
	Anchor   anchor.Spec `yaml:"anchor"`
	ImageDir string      `yaml:"image_dir"`
}

type ChainConfig struct {
	Nodes             int     `yaml:"nodes"`
	RestLength        float64 `yaml:"rest_length"`
	Iterations        int     `yaml:"iterations"`
	Damping           float64 `yaml:"damping"`
	Gravity           float64 `yaml:"gravity"`
	RestThreshold     float64 `yaml:"rest_threshold"`
	RotationDamping   float64 `yaml:"rotation_damping"`
	MaxRotationChange float64 `yaml:"max_rotation_change"`
	Thickness         float64 `yaml:"thickness"`
}

type RunConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Seed     int64   `yaml:"seed"`
}

func FromParams(p chain.Params) ChainConfig {
	return ChainConfig{
		Nodes:             p.NodeCount,
		RestLength:        p.RestLength,
		Iterations:        p.Iterations,
		Damping:           p.Damping,
		Gravity:           p.Gravity,
		RestThreshold:     p.VelocityThreshold,
		RotationDamping:   p.RotationDamping,
		MaxRotationChange: p.MaxRotationChange,
		Thickness:         p.Thickness,
	}
}

func (c ChainConfig) Params() chain.Params {
	return chain.Params{
		NodeCount:         c.Nodes,
		RestLength:        c.RestLength,
		Iterations:        c.Iterations,
		Damping:           c.Damping,
		Gravity:           c.Gravity,
		VelocityThreshold: c.RestThreshold,
		RotationDamping:   c.RotationDamping,
		MaxRotationChange: c.MaxRotationChange,
		Thickness:         c.Thickness,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Chain: FromParams(chain.DefaultParams()),
		Run: RunConfig{
			Dt:       DefaultDt,
			Duration: DefaultDuration,
		},
		Anchor:   anchor.Spec{Kind: "static"},
		ImageDir: DefaultImageDir,
	}
}

// Load reads a YAML file over the defaults. When the file names a preset,
// the preset is applied first and the file's own keys override it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if head.Preset != "" {
		p := GetPreset(head.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", head.Preset)
		}
		cfg = p
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Chain.Params().Validate(); err != nil {
		return err
	}
	if c.Run.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Run.Dt)
	}
	if c.Run.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Run.Duration)
	}
	if _, err := c.Anchor.Build(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
