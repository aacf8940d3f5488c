package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/esop-forecast/internal/config"
	"github.com/iwvelando/esop-forecast/pkg/constants"
	"gopkg.in/yaml.v3"
)

// ByteSize is a request body limit in bytes. In YAML it may carry a B, K or M
// suffix, e.g. "64K".
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("maxBodySize: %w", err)
	}
	size, err := ParseSize(raw)
	if err != nil {
		return fmt.Errorf("maxBodySize: %w", err)
	}
	*b = ByteSize(size)
	return nil
}

// Config defines runtime parameters for the dashboard server.
type Config struct {
	Address     string               `yaml:"address"`
	MaxBodySize ByteSize             `yaml:"maxBodySize"`
	ConfigFile  string               `yaml:"configFile"` // application config holding the grant constants
	Logging     config.LoggingConfig `yaml:"logging"`
}

// LoadConfig loads the server configuration from YAML. A missing file yields
// the defaults. A relative configFile is resolved against the directory of
// the server config and must exist.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:     constants.DefaultServerAddress,
		MaxBodySize: ByteSize(constants.DefaultMaxBodySizeBytes),
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}

	if cfg.Address == "" {
		cfg.Address = constants.DefaultServerAddress
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = ByteSize(constants.DefaultMaxBodySizeBytes)
	}

	if cfg.ConfigFile != "" {
		if !filepath.IsAbs(cfg.ConfigFile) {
			cfg.ConfigFile = filepath.Join(filepath.Dir(path), cfg.ConfigFile)
		}
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return nil, fmt.Errorf("server config %s names configFile %s: %w", path, cfg.ConfigFile, err)
		}
	}
	return cfg, nil
}

// BodySizeBytes returns the request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return int64(c.MaxBodySize)
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
}

// ParseSize converts a size such as "512", "64K" or "1MB" into bytes. An empty
// string yields the default body limit.
func ParseSize(value string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	if s == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	digits := strings.TrimRightFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if digits == "" {
		return 0, fmt.Errorf("invalid size %q", value)
	}

	unit := strings.TrimSpace(s[len(digits):])
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q in %q", unit, value)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("size %q is negative", value)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size %q overflows int64", value)
	}
	return n * multiplier, nil
}
