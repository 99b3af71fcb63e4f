package gpg

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/PolarWolf314/postmortem/internal/command"
)

type fakeRunner struct {
	calls  []command.Cmd
	result command.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, cmd command.Cmd) (command.Result, error) {
	f.calls = append(f.calls, cmd)
	return f.result, f.err
}

func TestEncrypt(t *testing.T) {
	runner := &fakeRunner{result: command.Result{Stdout: []byte("-----BEGIN PGP MESSAGE-----")}}
	g := New("", runner)

	out, err := g.Encrypt(context.Background(), []byte("secret"), []string{"alice@example.com", "0x1A2B3C4D"})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !strings.HasPrefix(string(out), "-----BEGIN PGP") {
		t.Errorf("unexpected output %q", out)
	}

	call := runner.calls[0]
	if call.Name != "gpg" {
		t.Errorf("binary = %q", call.Name)
	}
	if string(call.Stdin) != "secret" {
		t.Errorf("plaintext should go to stdin, got %q", call.Stdin)
	}
	args := strings.Join(call.Args, " ")
	for _, want := range []string{"--armor", "--encrypt", "--recipient alice@example.com", "--recipient 0x1A2B3C4D"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestEncryptFailure(t *testing.T) {
	runner := &fakeRunner{
		result: command.Result{Stderr: []byte("gpg: bob@example.com: skipped: No public key")},
		err:    errors.New("exit status 2"),
	}
	_, err := New("gpg2", runner).Encrypt(context.Background(), []byte("x"), []string{"bob@example.com"})

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !strings.Contains(gerr.Output, "No public key") {
		t.Errorf("Output = %q", gerr.Output)
	}
	if runner.calls[0].Name != "gpg2" {
		t.Errorf("binary = %q", runner.calls[0].Name)
	}
}

func TestEncryptWithoutRecipients(t *testing.T) {
	runner := &fakeRunner{}
	if _, err := New("", runner).Encrypt(context.Background(), []byte("x"), nil); err == nil {
		t.Fatal("expected error")
	}
	if len(runner.calls) != 0 {
		t.Error("gpg should not run without recipients")
	}
}

func TestSignAndEncryptFile(t *testing.T) {
	t.Run("Signed", func(t *testing.T) {
		runner := &fakeRunner{}
		err := New("", runner).SignAndEncryptFile(context.Background(), "alice.tgz", "alice.tgz.gpg",
			[]string{"alice@example.com"}, "me@example.com", "hunter2")
		if err != nil {
			t.Fatal(err)
		}
		call := runner.calls[0]
		if string(call.Stdin) != "hunter2\n" {
			t.Errorf("passphrase should be written to stdin, got %q", call.Stdin)
		}
		if slices.Contains(call.Args, "hunter2") {
			t.Error("passphrase must not appear in the arguments")
		}
		args := strings.Join(call.Args, " ")
		for _, want := range []string{"--output alice.tgz.gpg", "--local-user me@example.com", "--sign", "--passphrase-fd 0"} {
			if !strings.Contains(args, want) {
				t.Errorf("args %q missing %q", args, want)
			}
		}
		if call.Args[len(call.Args)-1] != "alice.tgz" {
			t.Errorf("input file should be last, got %v", call.Args)
		}
	})

	t.Run("UnsignedWithoutPassphrase", func(t *testing.T) {
		runner := &fakeRunner{}
		err := New("", runner).SignAndEncryptFile(context.Background(), "a.tgz", "a.tgz.gpg",
			[]string{"alice@example.com"}, "me@example.com", "")
		if err != nil {
			t.Fatal(err)
		}
		call := runner.calls[0]
		if slices.Contains(call.Args, "--sign") {
			t.Error("should not sign without a passphrase")
		}
		if call.Stdin != nil {
			t.Errorf("stdin should be empty, got %q", call.Stdin)
		}
	})
}
