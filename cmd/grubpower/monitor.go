package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GEROGIANNIS/GrubPower/pkg/client"
	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/daemon"
	"github.com/GEROGIANNIS/GrubPower/pkg/monitor"
	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
	"github.com/GEROGIANNIS/GrubPower/pkg/sysinit"
	"github.com/GEROGIANNIS/GrubPower/pkg/version"
)

var (
	allowShutdown = false
	allowNonRoot  = false
	pollSeconds   = 5
)

// NewMonitorCommand .
func NewMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "monitor",
		Short:   "Run the monitor loop in the foreground",
		Long:    "Run the battery/lid/USB monitor loop on the host, with the status API on the daemon socket. This is the same loop the initramfs runs at boot. Without --allow-shutdown the low-battery transition only logs instead of powering off.",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("grubpower monitor starting")

			cfg, err := config.NewFile(configPath)
			if err != nil {
				return err
			}
			logrus.WithFields(cfg.LogrusFields()).Info("config loaded")

			fs := sysfs.New("")
			shutdown := func() error {
				logrus.Warn("low-battery shutdown suppressed (run with --allow-shutdown to honor it)")
				return nil
			}
			if allowShutdown {
				shutdown = sysinit.Poweroff
			}

			m := monitor.New(
				fs,
				monitor.NewUSBEnabler(fs, cfg.SelectPorts(), cfg.DisableAutosuspend()),
				monitor.NewLidReader(fs, cfg.HandleACPI()),
				monitor.ProbeDisplay(fs),
				monitor.Options{
					PollInterval:    time.Duration(pollSeconds) * time.Second,
					RefreshInterval: 30 * time.Second,
					ReportInterval:  60 * time.Second,
					GracePeriod:     5 * time.Second,
					MinBattery:      cfg.MinBattery(),
					LidControl:      cfg.LidControl(),
					Shutdown:        shutdown,
				},
			)

			return daemon.Run(m, cfg, unixSocketPath, allowNonRoot)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&allowShutdown, "allow-shutdown", false, "actually power off when the battery threshold is crossed")
	f.BoolVar(&allowNonRoot, "allow-non-root-access", false, "allow non-root users to query the daemon socket")
	f.IntVar(&pollSeconds, "poll-interval", 5, "seconds between monitor cycles")

	return cmd
}

// NewStatusCommand .
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show the state of a running monitor",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiClient := client.NewClient(unixSocketPath)

			st, err := apiClient.GetStatus()
			if err != nil {
				return err
			}

			cmd.Println(bold("Monitor status:"))
			if st.Battery == monitor.UnknownBattery {
				cmd.Println("  battery:        unknown (no battery found)")
			} else {
				cmd.Printf("  battery:        %d%%\n", st.Battery)
			}
			if st.MinBattery > 0 {
				cmd.Printf("  threshold:      %d%%\n", st.MinBattery)
			} else {
				cmd.Println("  threshold:      disabled")
			}
			cmd.Printf("  lid:            %s\n", st.Lid)
			cmd.Printf("  display:        %s (via %s)\n", onOffText(st.DisplayOn), st.DisplayDriver)
			cmd.Printf("  port selection: %s\n", st.PortSelection)
			cmd.Printf("  usb matched:    %d\n", st.MatchedDevices)
			if st.ShutdownPending {
				cmd.Println(red("  shutdown pending"))
			}
			return nil
		},
	}
}

func onOffText(on bool) string {
	if on {
		return green("on")
	}
	return yel("off")
}
