package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/abiosoft/readline"
	"github.com/spf13/cobra"

	"github.com/jmedhanie/protosh/core"
	"github.com/jmedhanie/protosh/core/config"
	"github.com/jmedhanie/protosh/core/logger"
)

var (
	cfgPath    string
	oneCommand string
)

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "protosh",
	Short: "A tiny interactive command interpreter.",
	Long: `protosh is a small interactive command interpreter with builtin
commands, a bounded history store and history replay.

Run it with no arguments for an interactive session, or use the
subcommands to serve sessions over SSH and inspect their logs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.Load(cfgPath)
		if errors.Is(err, fs.ErrNotExist) {
			// Interactive use shouldn't require an init first.
			cfg = config.Defaults()
		} else if err != nil {
			return err
		}

		appLog, err := cfg.OpenAppLog()
		if err != nil {
			return err
		}
		defer appLog.Close()

		auditLog := logger.NewJsonLinesLogRecorder(appLog)
		slog := auditLog.NewSession()

		host, _ := os.Hostname()
		slog.Record(&logger.SessionStart{
			User:  os.Getenv("USER"),
			Host:  host,
			Term:  os.Getenv("TERM"),
			IsPty: readline.DefaultIsTerminal(),
		})
		defer slog.Record(&logger.SessionEnd{})

		shell, err := core.NewShell(cfg, core.ShellIO{
			Stdin:  os.Stdin,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}, slog)
		if err != nil {
			return err
		}

		if oneCommand != "" {
			shell.Eval(oneCommand)
			return nil
		}

		// The terminal changes hands while children run in the
		// foreground; taking it back must not suspend the interpreter.
		signal.Ignore(syscall.SIGTTOU)

		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		defer signal.Stop(interrupts)
		go func() {
			for range interrupts {
				shell.Interrupt()
			}
		}()

		shell.Run()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVarP(&oneCommand, "command", "c", "", "run a single command and exit")
}
