package cmd

import (
	"context"
	"fmt"

	logger "github.com/PolarWolf314/postmortem/internal/logging"
	"github.com/PolarWolf314/postmortem/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose    bool
	debug      bool
	send       bool
	redact     bool
	configPath string

	history      bool
	historyLimit int
	historySince string
	historyJSON  bool

	Logger logger.Logger

	RootCmd = &cobra.Command{
		Use:   "postmortem [recipient...]",
		Short: "Prepare encrypted account packets for the people who will need them",
		Long: `Generates one encrypted packet per recipient describing the accounts
tagged for them in your password manager.

Each account names the categories of recipients that should receive it in
its postmortem_recipients field. For every recipient in settings.yaml whose
categories match, the account is written into that recipient's packet along
with any attachments and a networth report. The packet is then archived,
signed and encrypted to the recipient's gpg key and your own.

With no arguments every configured recipient gets a packet. Name
recipients to limit the run to them.

Examples:
  postmortem                       # Packets for everyone
  postmortem alice bob             # Only alice and bob
  postmortem --send                # Also email each packet
  postmortem --redact alice        # Leave out secret values
  postmortem --history -n 10       # Last 10 packets generated`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing postmortem with verbose=%t, debug=%t", verbose, debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if history {
				return runHistory(cmd, args)
			}
			return runGenerate(cmd, args)
		},
	}
)

func init() {
	addGenerateFlags(RootCmd.Flags())
	addHistoryFlags(RootCmd.Flags())

	RootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(c.ErrOrStderr(), ui.Failed("%s", err.Error()))
		fmt.Fprintln(c.ErrOrStderr(), ui.Hint("run %s for usage", ui.Code.Sprint("postmortem --help")))
		return err
	})
}

func addGenerateFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")
	flags.BoolVarP(&send, "send", "s", false, "email each packet to its recipient")
	flags.BoolVarP(&redact, "redact", "r", false, "replace secrets with <redacted> and omit the importable accounts file")
	flags.StringVar(&configPath, "config", "", "settings file (default is $XDG_CONFIG_HOME/postmortem/settings.yaml)")
}

func addHistoryFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&history, "history", false, "show previously generated packets instead of generating")
	flags.IntVarP(&historyLimit, "number", "n", 0, "with --history, limit number of entries shown")
	flags.StringVar(&historySince, "since", "", "with --history, show entries after date (YYYY-MM-DD)")
	flags.BoolVar(&historyJSON, "json", false, "with --history, output as JSON array")
}

// Execute runs the root command. Cancelling ctx stops the run.
func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

// resetGlobalState resets all flag variables to their defaults for testing.
func resetGlobalState() {
	verbose = false
	debug = false
	send = false
	redact = false
	configPath = ""
	history = false
	historyLimit = 0
	historySince = ""
	historyJSON = false
}
