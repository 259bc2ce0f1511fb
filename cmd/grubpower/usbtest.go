package main

import (
	"github.com/spf13/cobra"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/monitor"
	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

// NewUSBTestCommand .
func NewUSBTestCommand() *cobra.Command {
	apply := false

	cmd := &cobra.Command{
		Use:     "usbtest",
		Short:   "List USB devices and their power settings",
		Long:    "Enumerate the USB devices visible right now, show their power attributes and whether the configured SELECT_PORTS policy matches them. With --apply, the power-on policy is written once, the same way the monitor loop does every cycle.",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			fs := sysfs.New("")
			usb := monitor.NewUSBEnabler(fs, cfg.SelectPorts(), cfg.DisableAutosuspend())

			if apply {
				n := usb.Apply()
				cmd.Printf("applied power-on policy to %d devices\n\n", n)
			}

			devices := usb.Devices()
			if len(devices) == 0 {
				cmd.Println("no USB devices found")
				return nil
			}

			cmd.Println(bold("USB devices:"))
			for _, d := range devices {
				marker := " "
				if d.Matched {
					marker = "*"
				}
				cmd.Printf("%s %-10s bus %d  control=%-4s autosuspend_delay_ms=%-6s wakeup=%s",
					marker, d.Name, d.Bus, orDash(d.Control), orDash(d.Autosuspend), orDash(d.Wakeup))
				if d.ChargingPort {
					cmd.Print("  [charging?]")
				}
				cmd.Println()
			}
			cmd.Printf("\n* = matched by SELECT_PORTS=%s\n", cfg.SelectPorts())
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "write the power-on policy once")

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
