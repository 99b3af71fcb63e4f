package accounts

import (
	"context"
	"fmt"

	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
)

// Value is a single field value.
type Value struct {
	Text   string
	Secret bool
}

// Entry is one member of a multi-valued field. Key is the index or name of
// the member; Description is optional text such as a security question.
type Entry struct {
	Key         string
	Description string
	Value       Value
}

// Account is a read-only view of a password manager account.
type Account interface {
	Name() string
	Aliases() []string
	Class() string
	Description() string

	// Fields lists the field names in declaration order.
	Fields() []string

	// Scalar returns a single-valued field.
	Scalar(name string) (Value, bool)

	// Multi returns a multi-valued field.
	Multi(name string) ([]Entry, bool)

	// Export returns the store's native serialization of the account,
	// suitable for importing it again. It always holds the real values.
	Export() ([]byte, error)
}

// Store gives access to the accounts held by a password manager.
type Store interface {
	// All returns every account in a stable order.
	All(ctx context.Context) ([]Account, error)

	// Get returns the account whose name or alias matches name.
	Get(ctx context.Context, name string) (Account, error)
}

// Credential returns the value of a field of the named account.
func Credential(ctx context.Context, store Store, account, field string) (string, error) {
	acc, err := store.Get(ctx, account)
	if err != nil {
		return "", fmt.Errorf("%w: %w", pmerrors.ErrCredential, err)
	}
	v, ok := acc.Scalar(field)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s: %w", pmerrors.ErrCredential, account, field, pmerrors.ErrFieldNotFound)
	}
	return v.Text, nil
}
