package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the simulator configuration. Command-line flags always
// override whatever is loaded here.
type Config struct {
	Cache struct {
		Enabled bool `toml:"enabled"`
	} `toml:"cache"`

	Stall struct {
		Flush uint64 `toml:"flush"`
		Hit   uint64 `toml:"hit"`
		Miss  uint64 `toml:"miss"`
		FAdd  uint64 `toml:"fadd"`
		FSub  uint64 `toml:"fsub"`
		FMul  uint64 `toml:"fmul"`
		FDiv  uint64 `toml:"fdiv"`
		FSqrt uint64 `toml:"fsqrt"`
		FCvt  uint64 `toml:"fcvt"`
	} `toml:"stall"`

	Timing struct {
		CycleHz     float64 `toml:"cycle_hz"`
		ByteBaud    float64 `toml:"byte_baud"`
		ConstantSec float64 `toml:"constant_sec"`
	} `toml:"timing"`

	Statistics struct {
		Format       string `toml:"format"` // text, json, csv
		OutputFile   string `toml:"output_file"`
		Instructions bool   `toml:"instructions"`
		PC           bool   `toml:"pc"`
	} `toml:"statistics"`

	Progress struct {
		BarSize int `toml:"bar_size"` // 0 disables the fractional bar
	} `toml:"progress"`
}

// Default returns a configuration matching the stall-model coefficients the
// simulator implements out of the box, with the cache enabled.
func Default() *Config {
	cfg := &Config{}

	cfg.Cache.Enabled = true

	cfg.Stall.Flush = 3
	cfg.Stall.Hit = 1
	cfg.Stall.Miss = 108 * 120
	cfg.Stall.FAdd = 2
	cfg.Stall.FSub = 2
	cfg.Stall.FMul = 2
	cfg.Stall.FDiv = 10
	cfg.Stall.FSqrt = 7
	cfg.Stall.FCvt = 1

	cfg.Timing.CycleHz = 120_000_000
	cfg.Timing.ByteBaud = 115200
	cfg.Timing.ConstantSec = 0

	cfg.Statistics.Format = "text"
	cfg.Statistics.OutputFile = ""
	cfg.Statistics.Instructions = false
	cfg.Statistics.PC = false

	cfg.Progress.BarSize = 0

	return cfg
}

// GetConfigPath returns the platform-specific default config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "risc-sim")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "risc-sim")

	default:
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads configuration from path, falling back silently to Default when
// path is empty or the file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
