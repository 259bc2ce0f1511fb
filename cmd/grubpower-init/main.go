// grubpower-init is the init process of the GrubPower initramfs. It mounts
// the pseudo-filesystems, loads extra kernel modules, and runs the monitor
// loop until the battery threshold powers the machine off.
package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/monitor"
	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
	"github.com/GEROGIANNIS/GrubPower/pkg/sysinit"
)

const (
	configFile = "/etc/grubpower.conf"
	modulesDir = "/lib/modules"
)

func setupLogger(cfg config.Config) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	if !cfg.EnableLogging() {
		return
	}
	f, err := os.OpenFile(cfg.LogFile(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logrus.Warnf("cannot open log file %s: %v", cfg.LogFile(), err)
		return
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, f))
}

func run() error {
	if err := sysinit.MountAll(); err != nil {
		// Without /sys nothing below can work, but there is nowhere to
		// escalate to. Log and keep going with whatever is mounted.
		logrus.Errorf("mounting pseudo-filesystems failed: %v", err)
	}

	cfg, err := config.NewFile(configFile)
	if err != nil {
		return err
	}
	setupLogger(cfg)
	logrus.WithFields(cfg.LogrusFields()).Info("grubpower environment starting")

	if err := sysinit.LoadModules(modulesDir); err != nil {
		logrus.Warnf("loading extra modules failed: %v", err)
	}

	fs := sysfs.New("")
	m := monitor.New(
		fs,
		monitor.NewUSBEnabler(fs, cfg.SelectPorts(), cfg.DisableAutosuspend()),
		monitor.NewLidReader(fs, cfg.HandleACPI()),
		monitor.ProbeDisplay(fs),
		monitor.Options{
			PollInterval:    5 * time.Second,
			RefreshInterval: 30 * time.Second,
			ReportInterval:  60 * time.Second,
			GracePeriod:     5 * time.Second,
			MinBattery:      cfg.MinBattery(),
			LidControl:      cfg.LidControl(),
			Shutdown:        sysinit.Poweroff,
		},
	)

	return m.Run(context.Background())
}

func main() {
	if err := run(); err != nil {
		logrus.Errorf("init failed: %v", err)
	}

	// PID 1 must never exit: a dead init panics the kernel. If the monitor
	// returned (shutdown issued or startup failed), idle until the hardware
	// acts on it or the user power-cycles.
	for {
		time.Sleep(time.Hour)
	}
}
