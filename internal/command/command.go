// Package command runs the external programs postmortem delegates to.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Cmd describes one invocation.
type Cmd struct {
	Name  string
	Args  []string
	Stdin []byte
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Output returns stderr, or stdout when stderr is empty, trimmed.
func (r Result) Output() string {
	if out := strings.TrimSpace(string(r.Stderr)); out != "" {
		return out
	}
	return strings.TrimSpace(string(r.Stdout))
}

// Runner executes commands and waits for them to finish.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (Result, error)
}

// ExecRunner runs commands as child processes. Cancelling the context
// kills the child.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd Cmd) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	err := c.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	if err != nil {
		return result, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return result, nil
}
