package errors

import (
	"errors"
	"fmt"
)

// Configuration errors indicate problems with the settings file.
var (
	// ErrInvalidConfig indicates a settings value failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrReferenceCycle indicates a chain of @references that loops back on itself.
	ErrReferenceCycle = errors.New("reference cycle in configuration")

	// ErrUnknownReference indicates an @reference to a setting that does not exist.
	ErrUnknownReference = errors.New("unknown setting reference")

	// ErrUnknownRecipient indicates a recipient requested on the command line is not configured.
	ErrUnknownRecipient = errors.New("unknown recipient")
)

// Account store errors indicate problems reading the password manager.
var (
	// ErrAccountNotFound indicates no account matches the requested name or alias.
	ErrAccountNotFound = errors.New("account not found")

	// ErrFieldNotFound indicates the account does not carry the requested field.
	ErrFieldNotFound = errors.New("field not found")

	// ErrCredential indicates a credential could not be produced from the store.
	ErrCredential = errors.New("could not obtain credential")

	// ErrInvalidAccount indicates an account file is malformed.
	ErrInvalidAccount = errors.New("invalid account")
)

// Packaging errors indicate failures while building or delivering a packet.
var (
	// ErrEncryptFailed indicates gpg could not encrypt or sign a file.
	ErrEncryptFailed = errors.New("encryption failed")

	// ErrSendFailed indicates the mail transfer agent rejected a message.
	ErrSendFailed = errors.New("failed to send mail")

	// ErrNetworthFailed indicates the networth report could not be generated.
	ErrNetworthFailed = errors.New("networth report failed")

	// ErrInterrupted indicates the run was cancelled by the user.
	ErrInterrupted = errors.New("terminated by user")
)

// History errors indicate problems reading past runs.
var (
	// ErrNoHistory indicates the run log does not exist yet.
	ErrNoHistory = errors.New("no runs recorded")

	// ErrInvalidDateFormat indicates a date filter is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// ConfigError reports a settings problem at a specific key and line.
type ConfigError struct {
	File string
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if loc != "" {
		loc += ": "
	}
	if e.Path != "" {
		return fmt.Sprintf("%s%s: %s", loc, e.Path, e.Msg)
	}
	return loc + e.Msg
}

// Unwrap returns the sentinel this error belongs to.
func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidConfig
}

// EncryptError carries the diagnostic output of a failed gpg invocation.
type EncryptError struct {
	Recipient string
	Output    string
}

func (e *EncryptError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %s", e.Recipient, ErrEncryptFailed)
	}
	return fmt.Sprintf("%s: %s:\n%s", e.Recipient, ErrEncryptFailed, e.Output)
}

func (e *EncryptError) Unwrap() error {
	return ErrEncryptFailed
}
