// Package cmd contains testing utilities shared between CLI tests.
// This file provides common functions for setting up test environments,
// capturing output, and running the root command.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	logger "github.com/PolarWolf314/postmortem/internal/logging"
)

// fakeGPG stands in for gpg: it copies the input file to --output, or
// stdin to stdout, so packets can be produced without a keyring.
const fakeGPG = `#!/bin/sh
out=""
while [ $# -gt 1 ]; do
    case "$1" in
        --output) out="$2"; shift ;;
    esac
    shift
done
if [ -n "$out" ]; then
    cp "$1" "$out"
else
    cat
fi
`

// testEnv holds the locations a test run reads and writes.
type testEnv struct {
	workDir     string
	settings    string
	accountsDir string
	logFile     string
}

// setupTestEnvironment points the user config and data directories at
// temporary ones, writes a fake gpg and changes into an empty work directory.
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()

	env := &testEnv{
		workDir:     filepath.Join(root, "work"),
		settings:    filepath.Join(root, "config", "postmortem", "settings.yaml"),
		accountsDir: filepath.Join(root, "accounts"),
		logFile:     filepath.Join(root, "data", "postmortem", "log.jsonl"),
	}
	for _, dir := range []string{env.workDir, filepath.Dir(env.settings), env.accountsDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("NO_COLOR", "1")

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(env.workDir); err != nil {
		t.Fatalf("Failed to change to work directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		resetGlobalState()
	})

	gpg := filepath.Join(root, "gpg")
	if err := os.WriteFile(gpg, []byte(fakeGPG), 0700); err != nil {
		t.Fatalf("Failed to write fake gpg: %v", err)
	}

	env.writeSettings(t, fmt.Sprintf(`my gpg ids: me@example.com
sign with: me@example.com
avendesora gpg passphrase account: gpg
accounts dir: %s
gpg binary: %s
recipients:
    alice:
        email: alice@example.com
        category: family
    bob:
        gpg ids: 0123456789ABCDEF
        category: business
`, env.accountsDir, gpg))

	env.writeAccount(t, "gpg.toml", "passcode = \"correct horse\"\n")
	env.writeAccount(t, "chase.toml", `desc = "Joint checking account"
postmortem_recipients = "family"

[passcode]
value = "7Xs7sXAd"
secret = true
`)
	return env
}

func (e *testEnv) writeSettings(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(e.settings, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}
}

func (e *testEnv) writeAccount(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.accountsDir, name), []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write account: %v", err)
	}
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// runCLI runs the root command with args, capturing its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetGlobalState()
	Logger = logger.Logger{}
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	RootCmd.SetArgs(args)
	return captureOutput(func() error {
		return Execute(context.Background())
	})
}
