package config

import (
	"log"
	"os"
	"path/filepath"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`

	// Directories
	DataDirectory    string `json:"data_directory"`
	SchemasDirectory string `json:"schemas_directory"`
	PlansDirectory   string `json:"plans_directory"`

	// File paths
	BaseSchemaFile  string `json:"base_schema_file"`
	OverlayFile     string `json:"overlay_file"`
	CurrentPlanFile string `json:"current_plan_file"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	// Get working directory
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	cfg := &Config{
		ListenAddr:    ":8080",
		Debug:         false,
		DataDirectory: filepath.Join(wd, "data"),
	}
	cfg.applyDataDir(cfg.DataDirectory)
	return cfg
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := DefaultConfig()

	if addr := os.Getenv("CARE_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("CARE_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}
	if dataDir := os.Getenv("CARE_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
		cfg.applyDataDir(dataDir)
	}
	if schemaFile := os.Getenv("CARE_SCHEMA_FILE"); schemaFile != "" {
		cfg.BaseSchemaFile = schemaFile
	}
	if overlayFile := os.Getenv("CARE_OVERLAY_FILE"); overlayFile != "" {
		cfg.OverlayFile = overlayFile
	}

	// Ensure directories exist
	cfg.ensureDirectories()

	return cfg
}

// applyDataDir derives the paths rooted under the data directory
func (c *Config) applyDataDir(dataDir string) {
	c.SchemasDirectory = filepath.Join(dataDir, "schemas")
	c.PlansDirectory = filepath.Join(dataDir, "plans")
	c.BaseSchemaFile = filepath.Join(dataDir, "schemas", "base.json")
	c.OverlayFile = filepath.Join(dataDir, "schemas", "overlay.json")
	c.CurrentPlanFile = filepath.Join(dataDir, "current_plan.json")
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	dirs := []string{
		c.DataDirectory,
		c.SchemasDirectory,
		c.PlansDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Warning: could not create directory %s: %v", dir, err)
		}
	}
}
