// Package configs loads and validates the postmortem settings file.
//
// Settings live in YAML at <UserConfigDir>/postmortem/settings.yaml. The
// file is parsed into an AST so every value keeps its source line, which is
// reported with the offending key path when validation fails:
//
//	settings.yaml:14: recipients.alice.email: "alice@" is not a valid email address
//
// # Keys
//
// Keys are normalized before use: lower-cased, with whitespace and hyphens
// collapsed to underscores, so "my gpg ids" and "my_gpg_ids" are the same
// setting. Unknown keys are dropped with a warning.
//
// # References
//
// A string value that begins with @ is replaced by the value of the
// top-level setting it names:
//
//	family emails: alice@example.com bob@example.com
//	cc: @family emails
//
// References may point at settings that contain references themselves;
// a loop is reported as ErrReferenceCycle. Use @@ for a literal leading @.
//
// # Settings
//
// Load returns an immutable *Settings that is passed explicitly to every
// component. When the settings file does not exist the built-in defaults
// are used and a warning is returned.
package configs
