// Package workflows provides high-level orchestration for postmortem.
//
// Workflows coordinate the scanner, renderer, packager and dispatcher to
// implement complete user-facing features, independent of CLI concerns
// like flag parsing, spinners, and output formatting.
//
// # Available Workflows
//
//   - Generate: builds, and optionally mails, one packet per recipient
//   - History: reads back the run log
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Generate(ctx, settings, store, opts)
//	var encErr *pmerrors.EncryptError
//	if errors.As(err, &encErr) {
//	    // Show gpg's diagnostics
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancelling it stops the run between recipients and kills any external
// command that is still running.
package workflows
