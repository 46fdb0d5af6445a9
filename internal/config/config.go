// Package config provides the TOML application configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const configFile = "config.toml"

// Config holds user-tunable application settings.
type Config struct {
	HistorySteps   int     // retained undo snapshots
	BrushSize      float64 // default brush diameter in screen pixels
	BrushStrength  float64 // default brush strength in [0, 1]
	AutosaveOnExit bool    // save the open project when quitting
	LastDirectory  string  // starting directory for file dialogs
	WindowWidth    int
	WindowHeight   int
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		HistorySteps:   30,
		BrushSize:      80,
		BrushStrength:  0.7,
		AutosaveOnExit: true,
		WindowWidth:    1280,
		WindowHeight:   860,
	}
}

// Dir returns the configuration directory, creating it if necessary.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	dir := filepath.Join(base, "liquifylab")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// Load reads the config file, writing the defaults first if it does not
// exist yet.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), err
	}
	path := filepath.Join(dir, configFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		conf := Default()
		if err := Save(conf); err != nil {
			return conf, err
		}
		return conf, nil
	}

	conf := Default()
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return Default(), fmt.Errorf("read config file: %w", err)
	}
	conf.sanitize()
	return conf, nil
}

// Save writes the config file.
func Save(conf Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(conf); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// sanitize clamps values a hand-edited file may have broken.
func (c *Config) sanitize() {
	if c.HistorySteps < 1 {
		c.HistorySteps = Default().HistorySteps
	}
	if c.BrushSize <= 0 {
		c.BrushSize = Default().BrushSize
	}
	if c.BrushStrength < 0 {
		c.BrushStrength = 0
	}
	if c.BrushStrength > 1 {
		c.BrushStrength = 1
	}
	if c.WindowWidth < 320 {
		c.WindowWidth = Default().WindowWidth
	}
	if c.WindowHeight < 240 {
		c.WindowHeight = Default().WindowHeight
	}
}
