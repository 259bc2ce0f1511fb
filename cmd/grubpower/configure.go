package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
)

// NewConfigureCommand .
func NewConfigureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "configure",
		Short:   "Get and set configuration values",
		GroupID: gBasic,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print the value of one configuration key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.NewFile(configPath)
				if err != nil {
					return err
				}

				v, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				cmd.Println(v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set one configuration key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.NewFile(configPath)
				if err != nil {
					return err
				}

				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := cfg.Save(); err != nil {
					return err
				}

				cmd.Printf("%s=%s\n", strings.ToUpper(args[0]), args[1])
				cmd.Println("run 'grubpower install' to apply the change to the boot image")
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print all configuration values",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.NewFile(configPath)
				if err != nil {
					return err
				}

				for _, key := range config.Keys() {
					v, err := cfg.Get(key)
					if err != nil {
						continue
					}
					cmd.Printf("%s=%s\n", key, v)
				}
				return nil
			},
		},
	)

	return cmd
}

// setupQuestions are the settings the interactive wizard walks through.
var setupQuestions = []struct {
	key    string
	prompt string
}{
	{config.KeyMinBattery, "Shutdown when battery falls to this percentage (0 disables)"},
	{config.KeySelectPorts, "USB ports to keep powered (all, charging, or bus numbers like 1,2)"},
	{config.KeyDisableAutosuspend, "Disable USB autosuspend (1/0)"},
	{config.KeyLidControl, "Turn the display off when the lid closes (1/0)"},
	{config.KeyExtraKernelParams, "Extra kernel parameters for the boot entry"},
}

// NewSetupCommand .
func NewSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "setup",
		Short:   "Interactive configuration wizard",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			cmd.Println("GrubPower setup. Press Enter to keep the value shown in brackets.")
			reader := bufio.NewReader(os.Stdin)

			for _, q := range setupQuestions {
				current, err := cfg.Get(q.key)
				if err != nil {
					continue
				}

				for {
					fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]: ", q.prompt, current)
					line, err := reader.ReadString('\n')
					if err != nil {
						return fmt.Errorf("setup aborted: %w", err)
					}
					line = strings.TrimSpace(line)
					if line == "" {
						break
					}
					if err := cfg.Set(q.key, line); err != nil {
						cmd.Printf("  %v\n", err)
						continue
					}
					break
				}
			}

			if err := cfg.Save(); err != nil {
				return err
			}

			cmd.Printf("configuration written to %s\n", configPath)
			cmd.Println("run 'grubpower install' to build and register the boot entry")
			return nil
		},
	}
}
