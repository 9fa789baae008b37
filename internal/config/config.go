package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/bytesweep/internal/filelock"
	"github.com/fenilsonani/bytesweep/internal/security"
	"github.com/fenilsonani/bytesweep/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Categories      Categories           `yaml:"categories"`
	Signatures      map[string]Signature `yaml:"signatures"`
	Probe           ProbeConfig          `yaml:"probe"`
	Workers         int                  `yaml:"workers"` // 0 = pick from CPU count
	ExcludePatterns []string             `yaml:"exclude_patterns"`
	DryRun          bool                 `yaml:"dry_run"`
	LogLevel        string               `yaml:"log_level"`
	LogFile         string               `yaml:"log_file"`
}

// Categories maps lowercase extensions (with the leading dot) to the
// validator that judges them. TextNames matches whole lowercase file names
// for configuration files that carry no conventional extension.
type Categories struct {
	Image     []string `yaml:"image"`
	Text      []string `yaml:"text"`
	TextNames []string `yaml:"text_names"`
	Audio     []string `yaml:"audio"`
	Video     []string `yaml:"video"`
}

// Signature declares the magic bytes a binary format must start with.
// Prefixes are hex encoded; any one of them is accepted.
type Signature struct {
	HeaderLength int      `yaml:"header_length"`
	Prefixes     []string `yaml:"prefixes"`
}

// ProbeConfig holds settings for the external decode and probe capabilities
type ProbeConfig struct {
	FFProbePath      string        `yaml:"ffprobe_path"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	ImageTimeout     time.Duration `yaml:"image_timeout"`
	AudioMinDuration float64       `yaml:"audio_min_duration"` // seconds
	VideoMinDuration float64       `yaml:"video_min_duration"` // seconds
	MaxImagePixels   int64         `yaml:"max_image_pixels"`
	MaxDecodeSize    string        `yaml:"max_decode_size"` // e.g. "256MB"; larger images get a header check only
}

// Decode returns the prefixes as raw bytes
func (s Signature) Decode() ([][]byte, error) {
	out := make([][]byte, 0, len(s.Prefixes))
	for _, p := range s.Prefixes {
		b, err := hex.DecodeString(strings.ReplaceAll(p, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid hex prefix %q: %w", p, err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("empty prefix")
		}
		out = append(out, b)
	}
	return out, nil
}

// MaxDecodeBytes returns the parsed MaxDecodeSize, or 0 when unset
func (p ProbeConfig) MaxDecodeBytes() (int64, error) {
	if strings.TrimSpace(p.MaxDecodeSize) == "" {
		return 0, nil
	}
	return utils.ParseSize(p.MaxDecodeSize)
}

// Load loads configuration from a file. Values in the file are layered on
// top of GetDefault: lists replace the defaults, signature entries are
// added to (or override) the default table.
func Load(configPath string) (*Config, error) {
	cfg := GetDefault()

	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a file
func Save(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := filelock.AtomicWrite(configPath, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}

	if c.Probe.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be > 0")
	}
	if c.Probe.ImageTimeout <= 0 {
		return fmt.Errorf("image timeout must be > 0")
	}
	if c.Probe.AudioMinDuration < 0 {
		return fmt.Errorf("audio min duration must be >= 0")
	}
	if c.Probe.VideoMinDuration < 0 {
		return fmt.Errorf("video min duration must be >= 0")
	}
	if c.Probe.MaxImagePixels < 0 {
		return fmt.Errorf("max image pixels must be >= 0")
	}
	if _, err := c.Probe.MaxDecodeBytes(); err != nil {
		return fmt.Errorf("invalid max decode size: %w", err)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	// Validate exclude patterns (glob syntax)
	for _, pattern := range c.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	for key, sig := range c.Signatures {
		if key == "" || key != strings.ToLower(key) {
			return fmt.Errorf("signature key %q must be lowercase and non-empty", key)
		}
		if sig.HeaderLength <= 0 {
			return fmt.Errorf("signature %s: header length must be > 0", key)
		}
		prefixes, err := sig.Decode()
		if err != nil {
			return fmt.Errorf("signature %s: %w", key, err)
		}
		if len(prefixes) == 0 {
			return fmt.Errorf("signature %s: at least one prefix is required", key)
		}
		for _, p := range prefixes {
			if len(p) > sig.HeaderLength {
				return fmt.Errorf("signature %s: prefix %x longer than header length %d", key, p, sig.HeaderLength)
			}
		}
	}

	return c.validateTables()
}

// validateTables rejects an extension claimed by two categories
func (c *Config) validateTables() error {
	owner := make(map[string]string)
	claim := func(category string, keys []string) error {
		for _, k := range keys {
			if k == "" || k != strings.ToLower(k) {
				return fmt.Errorf("%s entry %q must be lowercase and non-empty", category, k)
			}
			if prev, ok := owner[k]; ok && prev != category {
				return fmt.Errorf("%q is listed under both %s and %s", k, prev, category)
			}
			owner[k] = category
		}
		return nil
	}

	tables := []struct {
		name string
		keys []string
	}{
		{"image", c.Categories.Image},
		{"text", c.Categories.Text},
		{"audio", c.Categories.Audio},
		{"video", c.Categories.Video},
	}
	for _, t := range tables {
		if err := claim(t.name, t.keys); err != nil {
			return err
		}
	}

	sigKeys := make([]string, 0, len(c.Signatures))
	for k := range c.Signatures {
		sigKeys = append(sigKeys, k)
	}
	if err := claim("signatures", sigKeys); err != nil {
		return err
	}

	for _, name := range c.Categories.TextNames {
		if name == "" || name != strings.ToLower(name) {
			return fmt.Errorf("text name %q must be lowercase and non-empty", name)
		}
		if prev, ok := owner[name]; ok && prev != "text" {
			return fmt.Errorf("%q is listed under both %s and text names", name, prev)
		}
	}

	return nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "bytesweep")
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists(configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := Save(GetDefault(), configPath); err != nil {
		return false, err
	}
	return true, nil
}
