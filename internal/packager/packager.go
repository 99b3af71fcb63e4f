// Package packager assembles, archives and encrypts the packet for one
// recipient.
package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/PolarWolf314/postmortem/internal/archive"
	"github.com/PolarWolf314/postmortem/internal/command"
	"github.com/PolarWolf314/postmortem/internal/configs"
	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"github.com/PolarWolf314/postmortem/internal/gpg"
	"github.com/PolarWolf314/postmortem/internal/render"
	"github.com/PolarWolf314/postmortem/internal/utils"
)

const (
	ReadmeFile   = "README"
	NetworthFile = "networth"
	AccountsFile = "accounts.gpg"
	ExportFile   = "avendesora_accounts.gpg"
	UnpackFile   = "unpack"
)

// Encrypter is the subset of gpg the packager needs.
type Encrypter interface {
	Encrypt(ctx context.Context, plaintext []byte, recipients []string) ([]byte, error)
	SignAndEncryptFile(ctx context.Context, in, out string, recipients []string, signer, passphrase string) error
}

// Log receives progress and recoverable problems.
type Log interface {
	Infof(msg string, args ...any)
	Debugf(msg string, args ...any)
	Warnf(msg string, args ...any)
}

// Packager builds packets in Dir. Passphrase unlocks the SignWith key; the
// archive is signed only when both are set.
type Packager struct {
	Settings   *configs.Settings
	GPG        Encrypter
	Runner     command.Runner
	Log        Log
	Dir        string
	Passphrase string
	Owner      string
	Now        func() time.Time
}

// Packet describes a finished packet.
type Packet struct {
	Recipient configs.Recipient
	Name      string
	Archive   string
	Accounts  int

	// Text is the plaintext that was encrypted into accounts.gpg.
	Text string
}

func (p *Packager) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Packager) dir() string {
	if p.Dir == "" {
		return "."
	}
	return p.Dir
}

// Build writes the packet for r from the accounts collected in c and returns
// the path of the encrypted archive. The working directory and the
// unencrypted tarball are removed once the archive exists.
func (p *Packager) Build(ctx context.Context, r configs.Recipient, c *render.Collector) (*Packet, error) {
	now := p.now()
	name := p.Settings.PacketName(r, now)
	if !utils.IsValidDirName(name) {
		return nil, fmt.Errorf("%w: %s: packet name %q is not a plain directory name", pmerrors.ErrInvalidConfig, r.Name, name)
	}
	dir := filepath.Join(p.dir(), name)
	data := templateData{Recipient: r.Name, Owner: p.Owner, Date: now.Format("2006-01-02")}

	p.Log.Debugf("%s: preparing %s", r.Name, dir)
	if err := utils.RecreateDir(dir); err != nil {
		return nil, err
	}

	if len(r.Attach) > 0 {
		p.Log.Debugf("%s: attaching%s", r.Name, utils.FormatPaths(r.Attach))
	}
	for _, attachment := range r.Attach {
		if err := utils.CopyPath(attachment, dir); err != nil {
			p.Log.Warnf("%s: could not attach %s: %v", r.Name, attachment, err)
		}
	}

	readme, err := execute(packetReadmeTmpl, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render README: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ReadmeFile), []byte(readme), 0600); err != nil {
		return nil, fmt.Errorf("failed to write README: %w", err)
	}

	if err := p.networth(ctx, r, dir); err != nil {
		return nil, err
	}

	keys := p.keys(r)
	packet := &Packet{Recipient: r, Name: name, Accounts: len(c.Texts)}

	if len(c.Texts) > 0 {
		packet.Text = render.Join(c.Texts)
		if err := p.encryptTo(ctx, r, filepath.Join(dir, AccountsFile), packet.Text, keys); err != nil {
			return nil, err
		}
		if r.Accounts != nil && *r.Accounts != len(c.Texts) {
			p.Log.Warnf("%s: found %d accounts, expected %d", r.Name, len(c.Texts), *r.Accounts)
		}
		p.Log.Infof("%s: %d accounts", r.Name, len(c.Texts))
	} else {
		p.Log.Warnf("%s: no accounts found", r.Name)
	}

	if len(c.Exports) > 0 && !c.Options.Redact {
		text, err := exportFile(data, c.Exports)
		if err != nil {
			return nil, fmt.Errorf("failed to render account export: %w", err)
		}
		if err := p.encryptTo(ctx, r, filepath.Join(dir, ExportFile), text, keys); err != nil {
			return nil, err
		}
	}

	if err := utils.StripGroupOther(dir); err != nil {
		return nil, fmt.Errorf("failed to restrict permissions of %s: %w", dir, err)
	}

	tarball := dir + ".tgz"
	if err := archive.CreateTarGz(tarball, dir); err != nil {
		return nil, fmt.Errorf("failed to archive %s: %w", dir, err)
	}

	packet.Archive = tarball + ".gpg"
	signer := ""
	if p.Settings.SigningEnabled() {
		signer = p.Settings.SignWith
	}
	if err := p.GPG.SignAndEncryptFile(ctx, tarball, packet.Archive, keys, signer, p.Passphrase); err != nil {
		return nil, encryptError(ctx, r, err)
	}
	if err := os.Chmod(packet.Archive, 0600); err != nil {
		return nil, fmt.Errorf("failed to restrict permissions of %s: %w", packet.Archive, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	if err := os.Remove(tarball); err != nil {
		return nil, fmt.Errorf("failed to remove %s: %w", tarball, err)
	}

	if err := p.WriteHelpers(); err != nil {
		return nil, err
	}
	return packet, nil
}

// WriteHelpers writes the unpack script and the README that explains it.
func (p *Packager) WriteHelpers() error {
	unpack := filepath.Join(p.dir(), UnpackFile)
	if err := os.WriteFile(unpack, []byte(unpackScript), 0700); err != nil {
		return fmt.Errorf("failed to write %s: %w", unpack, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(unpack, 0700); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", unpack, err)
	}

	readme := filepath.Join(p.dir(), ReadmeFile)
	if err := os.WriteFile(readme, []byte(outerReadmeText()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", readme, err)
	}
	return nil
}

func (p *Packager) networth(ctx context.Context, r configs.Recipient, dir string) error {
	profile, ok := p.Settings.NetworthProfile(r)
	if !ok {
		return nil
	}

	cmd := command.Cmd{Name: p.Settings.NetworthCommand}
	if profile != "" {
		cmd.Args = []string{profile}
	}
	p.Log.Debugf("%s: running %s", r.Name, cmd)

	result, err := p.Runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %v\n%s", r.Name, pmerrors.ErrNetworthFailed, err, result.Output())
	}
	if err := os.WriteFile(filepath.Join(dir, NetworthFile), result.Stdout, 0600); err != nil {
		return fmt.Errorf("failed to write networth report: %w", err)
	}
	return nil
}

// keys returns the recipient's key ids followed by the owner's, without
// duplicates, so the owner can always read what was sent.
func (p *Packager) keys(r configs.Recipient) []string {
	var keys []string
	for _, k := range append(slices.Clone(r.KeyIDs()), p.Settings.MyGPGIDs...) {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (p *Packager) encryptTo(ctx context.Context, r configs.Recipient, path, text string, keys []string) error {
	ciphertext, err := p.GPG.Encrypt(ctx, []byte(text), keys)
	if err != nil {
		return encryptError(ctx, r, err)
	}
	if err := os.WriteFile(path, ciphertext, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func encryptError(ctx context.Context, r configs.Recipient, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	output := err.Error()
	var gerr *gpg.Error
	if errors.As(err, &gerr) && gerr.Output != "" {
		output = gerr.Output
	}
	return &pmerrors.EncryptError{Recipient: r.Name, Output: output}
}
