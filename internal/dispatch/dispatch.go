// Package dispatch mails finished packets to their recipients.
package dispatch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/PolarWolf314/postmortem/internal/command"
	"github.com/PolarWolf314/postmortem/internal/configs"
	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const message = `{{.Salutation}}

Attached is an encrypted packet I prepared for you. It describes accounts
you may need to look after and holds what you need to get into them.

To open it, save the attachment and run:

    gpg --output - --decrypt {{.Archive}} | tar -xzf -

If you were given the unpack script, this does the same:

    ./unpack {{.Archive}}

Either way you will be asked for the passphrase of your gpg key. Read the
README in the unpacked directory first.

Please keep this email. The packet is only useful together with your key.
`

var messageTmpl = template.Must(template.New("message").Parse(message))

// Subject is the mail subject used for every packet.
const Subject = "Encrypted account information"

// Dispatcher sends packets with an external mail command.
type Dispatcher struct {
	MailCommand string
	CC          []string
	Runner      command.Runner
}

// New returns a Dispatcher configured from settings.
func New(settings *configs.Settings, runner command.Runner) *Dispatcher {
	return &Dispatcher{MailCommand: settings.MailCommand, CC: settings.CC, Runner: runner}
}

// Salutation returns the greeting that opens the message to r.
func Salutation(r configs.Recipient) string {
	if r.Salutation != "" {
		return r.Salutation
	}
	return "Dear " + cases.Title(language.English).String(r.Name) + ","
}

// Compose returns the body of the message that accompanies archive.
func Compose(r configs.Recipient, archive string) (string, error) {
	var b strings.Builder
	err := messageTmpl.Execute(&b, struct {
		Salutation string
		Archive    string
	}{Salutation(r), filepath.Base(archive)})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Command returns the mail invocation for sending archive to r.
func (d *Dispatcher) Command(r configs.Recipient, archive string, body string) command.Cmd {
	name := d.MailCommand
	if name == "" {
		name = "mail"
	}
	args := []string{"-s", Subject, "-a", archive}
	if len(d.CC) > 0 {
		args = append(args, "-c", strings.Join(d.CC, ","))
	}
	args = append(args, r.Email...)
	return command.Cmd{Name: name, Args: args, Stdin: []byte(body)}
}

// Send mails archive to every address of r. It reports false when r has
// no email address.
func (d *Dispatcher) Send(ctx context.Context, r configs.Recipient, archive string) (bool, error) {
	if len(r.Email) == 0 {
		return false, nil
	}

	body, err := Compose(r, archive)
	if err != nil {
		return false, fmt.Errorf("failed to compose message: %w", err)
	}

	result, err := d.Runner.Run(ctx, d.Command(r, archive, body))
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		output := strings.TrimSpace(string(result.Stdout) + "\n" + string(result.Stderr))
		return false, fmt.Errorf("%s: %w: %v\n%s", r.Name, pmerrors.ErrSendFailed, err, output)
	}
	return true, nil
}
