package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bettertrack/bettertrack/internal/logger"
)

// FileName is the portfolio file inside a portfolio directory.
const FileName = "portfolio.json"

// ErrNotFound is returned by Load when the portfolio file does not exist.
var ErrNotFound = errors.New("portfolio not found")

// Parse decodes and validates a portfolio document.
func Parse(data []byte) (*PortfolioConfig, error) {
	var cfg PortfolioConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if cfg.Accounts == nil {
		cfg.Accounts = []AccountConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and validates the portfolio file at path.
func Load(path string) (*PortfolioConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s: %w", ErrNotFound, path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading portfolio: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Save stamps last_updated and writes cfg to path, replacing any previous
// file in one rename.
func Save(path string, cfg *PortfolioConfig) error {
	now := NewTimestamp(time.Now().Truncate(time.Second))
	cfg.LastUpdated = &now

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling portfolio: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".portfolio-*.json")
	if err != nil {
		return fmt.Errorf("writing portfolio: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing portfolio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing portfolio: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing portfolio: %w", err)
	}
	logger.Get().Debugw("portfolio saved", "path", path, "accounts", len(cfg.Accounts))
	return nil
}
