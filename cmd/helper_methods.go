package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/PolarWolf314/postmortem/internal/configs"
	"github.com/PolarWolf314/postmortem/internal/ui"
	"github.com/PolarWolf314/postmortem/internal/utils"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when
// stdout is a terminal and neither verbose nor debug output is on.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	spinning := !verbose && !debug && utils.IsStdoutTerminal()
	if spinning {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		if spinning {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if spinning {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// loadSettings resolves the settings file and loads it, reporting warnings.
func loadSettings() (*configs.Settings, configs.Paths, error) {
	paths, err := configs.DefaultPaths()
	if err != nil {
		return nil, paths, err
	}
	if configPath != "" {
		paths.SettingsFile = utils.ExpandHome(configPath)
	}
	Logger.Debugf("Loading settings from %s", paths.SettingsFile)

	settings, warnings, err := configs.Load(paths.SettingsFile, paths)
	if err != nil {
		return nil, paths, err
	}
	for _, w := range warnings {
		Logger.Warnf("%s", w)
	}
	return settings, paths, nil
}
