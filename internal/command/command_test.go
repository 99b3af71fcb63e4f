package command

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	requireShell(t)

	result, err := ExecRunner{}.Run(context.Background(), Cmd{
		Name:  "sh",
		Args:  []string{"-c", "cat; echo oops >&2"},
		Stdin: []byte("hello"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if string(result.Stdout) != "hello" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if result.Output() != "oops" {
		t.Errorf("Output() = %q, want stderr", result.Output())
	}
}

func TestExecRunnerFailure(t *testing.T) {
	requireShell(t)

	result, err := ExecRunner{}.Run(context.Background(), Cmd{
		Name: "sh",
		Args: []string{"-c", "echo no public key >&2; exit 2"},
	})
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if result.Output() != "no public key" {
		t.Errorf("Output() = %q", result.Output())
	}
}

func TestExecRunnerCancelled(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecRunner{}.Run(ctx, Cmd{Name: "sh", Args: []string{"-c", "sleep 5"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCmdString(t *testing.T) {
	c := Cmd{Name: "gpg", Args: []string{"--armor", "--encrypt"}}
	if c.String() != "gpg --armor --encrypt" {
		t.Errorf("String() = %q", c.String())
	}
}
