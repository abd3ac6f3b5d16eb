package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Precedence is flags over config file over defaults.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := &Config{
		Concurrency: 10,
		Timeout:     5 * time.Second,
		Total:       100,
		Repeat:      1,
		Endpoints:   append([]string(nil), DefaultEndpoints...),
		Mutating:    append([]string(nil), DefaultMutating...),
		Mode:        ModeRandom,
		ConfigFile:  configPath,
		Tracing:     TracingConfig{SampleRate: 1.0},
	}

	if configPath != "" {
		cfgViper := viper.New()
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := cfgViper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		cfg.ConfigFile = configPath
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeRandom
	}
	return cfg, nil
}

// poolFile is the YAML shape accepted by --endpoints-file.
type poolFile struct {
	Endpoints []string `yaml:"endpoints"`
	Mutating  []string `yaml:"mutating"`
}

func loadEndpointsFile(cfg *Config, path string) error {
	if path == "" {
		return fmt.Errorf("endpoints-file path must not be blank")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("endpoints file: %w", err)
	}
	var pf poolFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return fmt.Errorf("endpoints file %s: %w", path, err)
	}
	if len(pf.Endpoints) == 0 {
		return fmt.Errorf("endpoints file %s: no endpoints defined", path)
	}
	cfg.Endpoints = pf.Endpoints
	if len(pf.Mutating) > 0 {
		cfg.Mutating = pf.Mutating
	}
	return nil
}
