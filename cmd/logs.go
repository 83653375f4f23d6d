package cmd

import (
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jmedhanie/protosh/core/config"
	"github.com/jmedhanie/protosh/core/ttylog"
)

var idleTimeLimit time.Duration

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore recorded session transcripts.",
}

var lsCommand = &cobra.Command{
	Use:   "ls",
	Short: "List recorded session transcripts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}
		names, err := configuration.SessionLogNames()
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan)
		for _, name := range names {
			cyan.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// playCommand represents the play command
var playCommand = &cobra.Command{
	Use:   "play NAME",
	Short: "Replay a recorded session in the terminal.",
	Long:  `Plays a recorded session back to the current terminal with its original timing.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openSessionLog(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// catCommand represents the cat command
var catCommand = &cobra.Command{
	Use:   "cat NAME",
	Short: "Print the full output of a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openSessionLog(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// openSessionLog resolves a transcript by name in the configured log
// directory, falling back to an ordinary path.
func openSessionLog(name string) (io.ReadCloser, error) {
	if configuration, err := config.Load(cfgPath); err == nil {
		if fd, err := configuration.OpenSessionLog(name); err == nil {
			return fd, nil
		}
	}
	return os.Open(name)
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(lsCommand)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)

	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
