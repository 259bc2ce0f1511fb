package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/GEROGIANNIS/GrubPower/pkg/client"
)

var (
	logLevel       = "info"
	configPath     = "/etc/grubpower.conf"
	unixSocketPath = "/var/run/grubpower.sock"
)

var (
	gBasic        = "Basic:"
	gInstallation = "Installation:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gInstallation,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: grubpower monitor is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'grubpower monitor' to use this command on the host.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

// NewCommand .
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grubpower",
		Short: "grubpower keeps USB ports powered while the OS is not running",
		Long: `grubpower builds a minimal boot environment that keeps USB ports powered
while the host OS is not running, and registers it as a GRUB boot entry.

Report issues: https://github.com/GEROGIANNIS/GrubPower/issues`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "monitor daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewBuildCommand(),
		NewDebugRebuildCommand(),
		NewInstallCommand(),
		NewDirectInstallCommand(),
		NewUninstallCommand(),
		NewConfigureCommand(),
		NewSetupCommand(),
		NewCheckCommand(),
		NewUSBTestCommand(),
		NewMonitorCommand(),
		NewStatusCommand(),
		NewVersionCommand(),
	)

	return cmd
}
