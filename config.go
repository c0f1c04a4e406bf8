package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the unified on-disk configuration for the decoder service,
// loaded once at startup (§6 configuration).
type Config struct {
	DiscoveryPort int `yaml:"discoveryPort"`
	DecoderPort   int `yaml:"decoderPort"`

	LexiconBankPath string `yaml:"lexiconBankPath"`
	CommandListPath string `yaml:"commandListPath"`
	UnigramPath     string `yaml:"unigramPath"`
	BigramPath      string `yaml:"bigramPath"`

	NeuralLM struct {
		Endpoint string        `yaml:"endpoint"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"neuralLM"`

	ReadDeadline  time.Duration `yaml:"readDeadline"`
	ShutdownGrace time.Duration `yaml:"shutdownGrace"`

	TopK struct {
		Lexicon int `yaml:"lexicon"`
		Command int `yaml:"command"`
	} `yaml:"topK"`
}

// LoadConfig reads and validates the YAML configuration at path, filling
// in defaults for anything the file omits.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if cfg.DiscoveryPort == 0 {
		return nil, fmt.Errorf("discoveryPort is required")
	}
	if cfg.DecoderPort == 0 {
		return nil, fmt.Errorf("decoderPort is required")
	}
	if cfg.LexiconBankPath == "" {
		return nil, fmt.Errorf("lexiconBankPath is required")
	}
	if cfg.CommandListPath == "" {
		return nil, fmt.Errorf("commandListPath is required")
	}

	return cfg, nil
}

// loadConfig loads the config at path, then resolves any bank/lexicon path
// left relative against dataDir (mirroring the teacher's data-dir-relative
// resolution for config/cache paths).
func loadConfig(path, dataDir string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || dataDir == "." {
			return p
		}
		return filepath.Join(dataDir, p)
	}
	cfg.LexiconBankPath = resolve(cfg.LexiconBankPath)
	cfg.CommandListPath = resolve(cfg.CommandListPath)
	cfg.UnigramPath = resolve(cfg.UnigramPath)
	cfg.BigramPath = resolve(cfg.BigramPath)
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{
		DiscoveryPort: 20321,
		DecoderPort:   20320,
		ReadDeadline:  10 * time.Second,
		ShutdownGrace: 5 * time.Second,
	}
	cfg.NeuralLM.Timeout = 2 * time.Second
	cfg.TopK.Lexicon = 20
	cfg.TopK.Command = 229
	return cfg
}
