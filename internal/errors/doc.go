// Package errors provides typed error values for postmortem.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Configuration errors: settings file problems (ErrInvalidConfig,
//     ErrReferenceCycle, ErrUnknownReference)
//   - Account store errors: password manager lookups (ErrAccountNotFound,
//     ErrCredential)
//   - Packaging errors: gpg, mail and networth failures (ErrEncryptFailed,
//     ErrSendFailed)
//
// Two error types carry extra detail. ConfigError names the offending key
// path and source line; it unwraps to ErrInvalidConfig unless a more
// specific sentinel is set. EncryptError names the recipient whose packet
// failed along with the output of gpg; it unwraps to ErrEncryptFailed.
//
// # Usage
//
//	var cerr *errors.ConfigError
//	if errors.As(err, &cerr) {
//	    fmt.Println(cerr.Line)
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("reading %s: %w", path, errors.ErrInvalidAccount)
package errors
