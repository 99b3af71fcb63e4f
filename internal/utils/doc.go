// Package utils provides shared utility functions for postmortem.
//
// # Filesystem Utilities
//
//   - RecreateDir: removes and recreates a working directory
//   - CopyPath: copies an attachment (file or tree) into a directory
//   - StripGroupOther: recursively drops group/other permission bits
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - NormalizeKey: canonical form of a settings key
//   - ExpandHome: expands a leading ~ in paths
//
// # String Utilities
//
//   - IsValidEmail, IsValidGPGID: settings value checks
//   - SplitList, SplitTags: list parsing
//   - FormatPaths: formats file paths for human-readable output
//
// # Terminal Utilities
//
//   - IsStdoutTerminal: terminal detection
package utils
