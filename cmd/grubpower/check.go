package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/distatus/battery"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/grub"
	"github.com/GEROGIANNIS/GrubPower/pkg/monitor"
	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	yel   = color.New(color.FgYellow).SprintFunc()
)

func okText(ok bool) string {
	if ok {
		return green("ok")
	}
	return red("missing")
}

// NewCheckCommand .
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Short:   "Check whether this system can run GrubPower",
		Long:    "Verify that a kernel image, GRUB tooling, and the USB sysfs surface are present, and report the current battery state.",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			failed := false
			cmd.Println(bold("System compatibility:"))

			kernel := cfg.KernelPath()
			if kernel == "" || kernel == "auto" {
				kernel, err = grub.DetectKernel("/boot")
				if err != nil {
					kernel = ""
				}
			} else if _, err := os.Stat(kernel); err != nil {
				kernel = ""
			}
			if kernel != "" {
				cmd.Printf("  kernel image:   %s (%s)\n", okText(true), kernel)
			} else {
				cmd.Printf("  kernel image:   %s (no vmlinuz-* under /boot)\n", okText(false))
				failed = true
			}

			_, mkErr := exec.LookPath("grub-mkconfig")
			if mkErr != nil {
				_, mkErr = exec.LookPath("grub2-mkconfig")
			}
			cmd.Printf("  grub-mkconfig:  %s\n", okText(mkErr == nil))
			failed = failed || mkErr != nil

			fs := sysfs.New("")
			usbOK := fs.Exists("/sys/bus/usb/devices")
			cmd.Printf("  usb sysfs:      %s\n", okText(usbOK))
			failed = failed || !usbOK

			cmd.Println()
			cmd.Println(bold("Power sources:"))

			bats, batErr := battery.GetAll()
			if batErr != nil || len(bats) == 0 {
				cmd.Printf("  battery:        %s (auto-shutdown check will be skipped at runtime)\n", yel("none found"))
			} else {
				b := bats[0]
				pct := 0.0
				if b.Full > 0 {
					pct = b.Current / b.Full * 100
				}
				cmd.Printf("  battery:        %s (%.0f%%, state %s)\n", okText(true), pct, b.State)
			}

			lid := "none"
			if fs.Exists("/proc/acpi/button/lid") {
				lid = "acpi"
			}
			if lid == "none" {
				// The evdev probe needs only sysfs visibility.
				for _, name := range fs.List("/sys/class/input") {
					if n, err := fs.ReadString("/sys/class/input", name, "name"); err == nil && strings.Contains(strings.ToLower(n), "lid") {
						lid = "input device"
						break
					}
				}
			}
			if lid == "none" {
				cmd.Printf("  lid switch:     %s (lid will always read open)\n", yel("none found"))
			} else {
				cmd.Printf("  lid switch:     %s (%s)\n", okText(true), lid)
			}

			display := monitor.ProbeDisplay(fs)
			cmd.Printf("  display ctrl:   %s\n", display.Name())

			cmd.Println()
			if failed {
				return fmt.Errorf("this system is missing required pieces, see above")
			}
			cmd.Printf("%s\n", green("This system can run GrubPower."))
			return nil
		},
	}
}
