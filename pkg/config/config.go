// Copyright (c) Jeff Berkowitz 2021, 2023. All rights reserved.

// Package config loads the optional hackasm.yaml settings file. Values
// in the file are defaults; command line flags override them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultFile = "hackasm.yaml"

const (
	DefaultOutputExt = ".hack"
	DefaultBaud      = 115200
	DefaultMaxCycles = 1000000
)

type Serial struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type Sim struct {
	MaxCycles int `yaml:"max_cycles"`
}

type Config struct {
	Lenient   bool   `yaml:"lenient"`
	Listing   bool   `yaml:"listing"`
	Symbols   bool   `yaml:"symbols"`
	OutputExt string `yaml:"output_ext"`
	Debug     bool   `yaml:"debug"`
	Serial    Serial `yaml:"serial"`
	Sim       Sim    `yaml:"sim"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		OutputExt: DefaultOutputExt,
		Serial:    Serial{Baud: DefaultBaud},
		Sim:       Sim{MaxCycles: DefaultMaxCycles},
	}
}

// Load reads path over the defaults. A missing file is not an error
// unless explicit is set, meaning the user named the file.
func Load(path string, explicit bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML settings over the defaults. Unknown keys are
// rejected so that misspellings do not pass silently.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OutputExt == "" {
		return fmt.Errorf("output_ext must not be empty")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Sim.MaxCycles <= 0 {
		return fmt.Errorf("sim.max_cycles must be positive, got %d", c.Sim.MaxCycles)
	}
	return nil
}
