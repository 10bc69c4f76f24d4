package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the user configuration file (~/.bbdl.yaml). Flags override
// file values; the file overrides defaults.
type Settings struct {
	Language     string `yaml:"language"`
	VideoQuality int    `yaml:"videoQuality"`
	AudioQuality int    `yaml:"audioQuality"`
	SessData     string `yaml:"sessdata"`
	OutputDir    string `yaml:"outputDir"`
}

func Default() Settings {
	return Settings{
		Language:     "en",
		VideoQuality: 80,    // 1080P
		AudioQuality: 30280, // 192K
		OutputDir:    ".",
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bbdl.yaml"
	}
	return filepath.Join(home, ".bbdl.yaml")
}

// Load reads the settings file, falling back to defaults when it does not
// exist. Unset fields keep their default values.
func Load(path string) (Settings, error) {
	settings := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("error reading settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Default(), fmt.Errorf("error parsing settings file: %w", err)
	}
	if settings.Language == "" {
		settings.Language = "en"
	}
	if settings.OutputDir == "" {
		settings.OutputDir = "."
	}
	return settings, nil
}
