package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PolarWolf314/postmortem/internal/configs"
	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"github.com/PolarWolf314/postmortem/internal/ui"
	"github.com/PolarWolf314/postmortem/internal/workflows"
	"github.com/spf13/cobra"
)

func runHistory(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting history")

	paths, err := configs.DefaultPaths()
	if err != nil {
		return err
	}

	spinner, cleanup := startSpinner("Loading run log...", verbose)
	defer cleanup()

	result, err := workflows.History(cmd.Context(), workflows.HistoryOptions{
		LogFile:    paths.LogFile,
		Limit:      historyLimit,
		Recipients: args,
		Since:      historySince,
	})
	if err != nil {
		spinner.FinalMSG = formatHistoryError(err)
		if isHistoryUnexpectedError(err) {
			return err
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from run log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	spinner.FinalMSG = ""
	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No packets recorded.")
		} else {
			fmt.Println("No packets recorded matching the filters.")
		}
		return nil
	}

	if historyJSON {
		data, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, e := range result.Entries {
		marker := ""
		if e.Changed {
			marker = " " + ui.Warning.Sprint("changed")
		}
		if e.Sent {
			marker += " " + ui.Muted.Sprint("sent")
		}
		fmt.Printf("%-19s  %-12s  %-12s  %s%s\n",
			workflows.FormatDateTime(e.Timestamp), e.Recipient, pluralize(e.Accounts, "account"), e.Archive, marker)
	}
	return nil
}

// formatHistoryError formats a history error for display to the user.
func formatHistoryError(err error) string {
	switch {
	case errors.Is(err, pmerrors.ErrNoHistory):
		return ui.Info.Sprint("ℹ") + " No run log found. Packets are recorded each time postmortem runs."

	case errors.Is(err, pmerrors.ErrInvalidDateFormat):
		return ui.Failed("%s", err.Error())

	default:
		return ui.Failed("Failed to read run log: %s", err.Error())
	}
}

// isHistoryUnexpectedError returns true if the error should cause a non-zero exit.
func isHistoryUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, pmerrors.ErrNoHistory):
		return false
	default:
		return true
	}
}
