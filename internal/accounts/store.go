package accounts

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
)

// DirStore reads accounts from a directory of TOML files, one account per
// file. Files are visited in lexical order so runs are reproducible.
type DirStore struct {
	Dir string
}

// NewDirStore returns a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{Dir: dir}
}

// All loads every *.toml file below the store directory.
func (s *DirStore) All(ctx context.Context) ([]Account, error) {
	var out []Account
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".toml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read account file: %w", err)
		}
		acc, err := ParseAccount(data, strings.TrimSuffix(d.Name(), ".toml"))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the account whose name or alias matches name, ignoring case.
func (s *DirStore) Get(ctx context.Context, name string) (Account, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, acc := range all {
		if strings.EqualFold(acc.Name(), name) {
			return acc, nil
		}
		for _, alias := range acc.Aliases() {
			if strings.EqualFold(alias, name) {
				return acc, nil
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", name, pmerrors.ErrAccountNotFound)
}
