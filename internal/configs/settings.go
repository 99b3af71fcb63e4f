package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the per-user locations postmortem reads and writes.
type Paths struct {
	ConfigDir    string
	SettingsFile string
	DataDir      string
	LogFile      string
	AccountsDir  string
}

// DefaultPaths resolves the per-user configuration and data locations.
// XDG_DATA_HOME is honored when set.
func DefaultPaths() (Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("error getting home directory: %w", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("error getting config directory: %w", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	configDir = filepath.Join(configDir, "postmortem")
	dataDir = filepath.Join(dataDir, "postmortem")

	return Paths{
		ConfigDir:    configDir,
		SettingsFile: filepath.Join(configDir, "settings.yaml"),
		DataDir:      dataDir,
		LogFile:      filepath.Join(dataDir, "log.jsonl"),
		AccountsDir:  filepath.Join(configDir, "accounts"),
	}, nil
}
