package packager

import (
	"strings"
	"text/template"

	"github.com/PolarWolf314/postmortem/internal/render"
	"github.com/common-nighthawk/go-figure"
)

const packetReadme = `This directory was prepared for {{.Recipient}} on {{.Date}}.

It may contain the following files:

  accounts.gpg
      Descriptions of accounts and the credentials needed to access them.
      Decrypt it with:

          gpg --decrypt accounts.gpg > accounts

  avendesora_accounts.gpg
      The same accounts as account files that can be imported into a
      password manager. Decrypt it with:

          gpg --decrypt avendesora_accounts.gpg > accounts.import

  networth
      A summary of the estimated value of the accounts.

Any other files are documents that were attached for you.

Keep decrypted copies somewhere safe and delete them once you are done.
`

const outerReadme = `Each *.tgz.gpg file in this directory is an encrypted packet for one
person. To open yours, run:

    ./unpack <name>.tgz.gpg

You will be asked for the passphrase of your gpg key. A directory named
after the packet is created next to it; start with the README inside.
`

const unpackScript = `#!/bin/sh
# Decrypts and unpacks a packet produced by postmortem.
set -e

if [ $# -ne 1 ]; then
    echo "usage: $0 <name>.tgz.gpg" >&2
    exit 1
fi

gpg --output - --decrypt "$1" | tar -xzf -
echo "unpacked $(basename "$1" .tgz.gpg)"
`

const exportHeader = `# Accounts prepared by {{.Owner}} for {{.Recipient}} on {{.Date}}.
#
# Each account below is a complete account file. To import one, copy the
# lines between its "--- <name>.toml ---" marker and the next marker into
# a file of that name in the accounts directory of your password manager.
`

const exportFooter = "--- end ---\n"

// outerReadmeText is the README left next to the packets, headed by a banner.
func outerReadmeText() string {
	banner := figure.NewFigure("postmortem", "", true).String()
	return strings.TrimRight(banner, "\n") + "\n\n" + outerReadme
}

var (
	packetReadmeTmpl = template.Must(template.New("README").Parse(packetReadme))
	exportHeaderTmpl = template.Must(template.New("header").Parse(exportHeader))
)

type templateData struct {
	Recipient string
	Owner     string
	Date      string
}

func execute(t *template.Template, data templateData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// exportFile wraps export records so each can be cut out and imported.
func exportFile(data templateData, records []render.ExportRecord) (string, error) {
	header, err := execute(exportHeaderTmpl, data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(header)
	for _, r := range records {
		b.WriteString("\n--- " + r.Name + ".toml ---\n")
		b.WriteString(r.Data)
		if !strings.HasSuffix(r.Data, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n" + exportFooter)
	return b.String(), nil
}
