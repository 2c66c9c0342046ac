package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds all configuration options.
type Settings struct {
	// Catalog settings
	CatalogURL string `json:"catalog_url"`

	// Download settings
	OutputDir             string  `json:"output_dir"`
	Workers               int     `json:"workers"`
	RequestTimeout        float64 `json:"request_timeout"` // seconds
	DownloadMaxRetries    int     `json:"download_max_retries"`
	DownloadRetryCooldown float64 `json:"download_retry_cooldown"` // seconds
	DownloadRetryExponent float64 `json:"download_retry_exponent"`
	UserAgent             string  `json:"user_agent"`

	// Rate limiting: requests to any host containing ThrottledHost are
	// spaced at least MinRequestInterval seconds apart.
	ThrottledHost      string  `json:"throttled_host"`
	MinRequestInterval float64 `json:"min_request_interval"` // seconds

	// Storage settings
	VerifyImages bool `json:"verify_images"`

	// Manifest settings
	ManifestBaseURL string `json:"manifest_base_url"`
	ManifestPath    string `json:"manifest_path"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		CatalogURL: "https://taiko.wiki/api/song",

		OutputDir:             "charts",
		Workers:               10,
		RequestTimeout:        30,
		DownloadMaxRetries:    3,
		DownloadRetryCooldown: 1.0,
		DownloadRetryExponent: 2.0,
		UserAgent:             "chartdl",

		ThrottledHost:      "taiko.wiki",
		MinRequestInterval: 0.5,

		VerifyImages: false,

		ManifestBaseURL: "https://raw.githubusercontent.com/KirisameVanilla/chart-preview-database/refs/heads/main/charts",
		ManifestPath:    "previews.json",
	}
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
