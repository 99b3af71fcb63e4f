package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
)

var keySeparators = regexp.MustCompile(`[\s\-]+`)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// NormalizeKey converts a settings key to its canonical form: lower case
// with runs of whitespace and hyphens collapsed to a single underscore.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.ToLower(key)
	return keySeparators.ReplaceAllString(key, "_")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
