package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/postmortem/internal/accounts"
	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"github.com/PolarWolf314/postmortem/internal/ui"
	"github.com/PolarWolf314/postmortem/internal/workflows"
	"github.com/spf13/cobra"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting generate with recipients=%v send=%t redact=%t", args, send, redact)

	settings, paths, err := loadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatGenerateError(err))
		return err
	}

	spinner, cleanup := startSpinner("Generating packets...", verbose)
	defer cleanup()

	result, err := workflows.Generate(cmd.Context(), settings, accounts.NewDirStore(settings.AccountsDir), workflows.GenerateOptions{
		Recipients: args,
		Send:       send,
		Redact:     redact,
		LogFile:    paths.LogFile,
		Log:        Logger,
	})
	if ctxErr := cmd.Context().Err(); ctxErr != nil {
		spinner.FinalMSG = ""
		return fmt.Errorf("%w: %w", pmerrors.ErrInterrupted, ctxErr)
	}

	var lines []string
	if result != nil {
		for _, p := range result.Packets {
			lines = append(lines, formatPacket(p))
		}
	}
	if err != nil {
		lines = append(lines, formatGenerateError(err))
		spinner.FinalMSG = strings.Join(lines, "\n")
		return err
	}

	if len(lines) == 0 {
		spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No packets generated."
		return nil
	}
	if redact {
		lines = append(lines, ui.Warning.Sprint("[redacted]")+" secret values were left out")
	}
	spinner.FinalMSG = strings.Join(lines, "\n")
	return nil
}

func formatPacket(p workflows.PacketResult) string {
	line := ui.Done("%s: %s %s", ui.Highlight.Sprint(p.Recipient), ui.Path.Sprint(p.Archive),
		ui.Muted.Sprint(pluralize(p.Accounts, "account")))
	if send {
		if p.Sent {
			line += " sent"
		} else {
			line += " " + ui.Muted.Sprint("not sent")
		}
	}
	return line
}

// formatGenerateError formats a generate error for display to the user.
func formatGenerateError(err error) string {
	var cfgErr *pmerrors.ConfigError
	var encErr *pmerrors.EncryptError

	switch {
	case errors.As(err, &cfgErr):
		return ui.Failed("%s", cfgErr.Error())

	case errors.As(err, &encErr):
		msg := ui.Failed("%s: encryption failed", ui.Highlight.Sprint(encErr.Recipient))
		if encErr.Output != "" {
			msg += "\n" + ui.Indent(encErr.Output, 4)
		}
		return msg + "\n" + ui.Hint("check that the recipient's public key is in your keyring")

	case errors.Is(err, pmerrors.ErrUnknownRecipient):
		return ui.Failed("%s", err.Error()) + "\n" +
			ui.Hint("recipients are listed under %s in your settings", ui.Code.Sprint("recipients"))

	case errors.Is(err, pmerrors.ErrCredential):
		return ui.Failed("could not read the signing passphrase: %s", err.Error())

	case errors.Is(err, pmerrors.ErrSendFailed):
		return ui.Failed("%s", err.Error()) + "\n" +
			ui.Hint("the packet was written; rerun with %s once mail works", ui.Code.Sprint("--send"))

	default:
		return ui.Failed("%s", err.Error())
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
