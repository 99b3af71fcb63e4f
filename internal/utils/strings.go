package utils

import (
	"regexp"
	"strings"

	"github.com/PolarWolf314/postmortem/internal/ui"
)

// emailRegex is a simple regex for validating email format.
// It checks for: local-part@domain.tld format.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// gpgIDRegex matches a hex key id or fingerprint, optionally prefixed with 0x.
var gpgIDRegex = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]{8,}$`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidEmail checks if the given string is a valid email address format.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidGPGID reports whether id names a gpg key: either an email address
// or a hex key id of at least 8 digits.
func IsValidGPGID(id string) bool {
	return IsValidEmail(id) || gpgIDRegex.MatchString(id)
}

// SplitList splits a whitespace delimited list, dropping empty items.
func SplitList(s string) []string {
	return strings.Fields(s)
}

// SplitTags splits a list delimited by whitespace or commas.
func SplitTags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// IsValidDirName reports whether name can be used as a single directory
// entry: not empty, not "." or "..", and free of path separators.
func IsValidDirName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
