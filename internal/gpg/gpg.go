// Package gpg encrypts and signs packet files with the gpg binary.
package gpg

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/postmortem/internal/command"
)

// GPG drives a gpg binary. Keys come from the user's keyring.
type GPG struct {
	Binary string
	Runner command.Runner
}

// New returns a GPG that runs binary through runner.
func New(binary string, runner command.Runner) *GPG {
	if binary == "" {
		binary = "gpg"
	}
	return &GPG{Binary: binary, Runner: runner}
}

// Error is a failed gpg invocation along with what gpg printed.
type Error struct {
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Output == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Output)
}

func (e *Error) Unwrap() error { return e.Err }

func baseArgs() []string {
	return []string{"--batch", "--yes", "--armor", "--trust-model", "always"}
}

func recipientArgs(recipients []string) []string {
	args := make([]string, 0, 2*len(recipients)+1)
	args = append(args, "--encrypt")
	for _, r := range recipients {
		args = append(args, "--recipient", r)
	}
	return args
}

// Encrypt returns plaintext encrypted and armored for recipients.
func (g *GPG) Encrypt(ctx context.Context, plaintext []byte, recipients []string) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, &Error{Err: fmt.Errorf("no recipients")}
	}
	args := append(baseArgs(), recipientArgs(recipients)...)

	result, err := g.Runner.Run(ctx, command.Cmd{Name: g.Binary, Args: args, Stdin: plaintext})
	if err != nil {
		return nil, &Error{Output: result.Output(), Err: err}
	}
	if len(result.Stdout) == 0 {
		return nil, &Error{Output: result.Output(), Err: fmt.Errorf("gpg produced no output")}
	}
	return result.Stdout, nil
}

// SignAndEncryptFile writes in, encrypted for recipients, to out. The file
// is also signed when both signer and passphrase are given; the passphrase
// is passed on stdin, never on the command line.
func (g *GPG) SignAndEncryptFile(ctx context.Context, in, out string, recipients []string, signer, passphrase string) error {
	if len(recipients) == 0 {
		return &Error{Err: fmt.Errorf("no recipients")}
	}
	args := append(baseArgs(), "--output", out)

	var stdin []byte
	if signer != "" && passphrase != "" {
		args = append(args,
			"--pinentry-mode", "loopback",
			"--passphrase-fd", "0",
			"--local-user", signer,
			"--sign",
		)
		stdin = []byte(passphrase + "\n")
	}
	args = append(args, recipientArgs(recipients)...)
	args = append(args, in)

	result, err := g.Runner.Run(ctx, command.Cmd{Name: g.Binary, Args: args, Stdin: stdin})
	if err != nil {
		return &Error{Output: result.Output(), Err: err}
	}
	return nil
}
