package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var skipMkconfig = false

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Build the image and register the GRUB boot entry",
		Long:    "Build the initramfs image, copy it to OUTPUT_DIR, write the /etc/grub.d generator script, and run grub-mkconfig. You must run this command as root. Completed steps are rolled back if a later one fails.",
		GroupID: gInstallation,
		RunE: func(_ *cobra.Command, _ []string) error {
			inst, err := newInstaller()
			if err != nil {
				return err
			}
			inst.SkipMkconfig = skipMkconfig

			if err := inst.Install(); err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install: %w", err)
			}

			logrus.Info("installation succeeded. The GrubPower entry will appear in the GRUB menu on next boot.")
			return nil
		},
	}

	cmd.Flags().StringVar(&initBinaryPath, "init-binary", "", "path of the grubpower-init payload binary")
	cmd.Flags().BoolVar(&skipMkconfig, "skip-mkconfig", false, "do not run grub-mkconfig (run it yourself later)")

	return cmd
}

// NewDirectInstallCommand .
func NewDirectInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "direct-install",
		Short:   "Fallback install writing straight into GRUB's custom.cfg",
		Long:    "Install without touching /etc/grub.d: the menu entry is written into custom.cfg next to grub.cfg, which GRUB sources directly. Use this when the distribution does not process /etc/grub.d scripts.",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			inst, err := newInstaller()
			if err != nil {
				return err
			}
			inst.Direct = true

			if err := inst.Install(); err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to direct-install: %w", err)
			}

			logrus.Info("direct installation succeeded")
			return nil
		},
	}

	cmd.Flags().StringVar(&initBinaryPath, "init-binary", "", "path of the grubpower-init payload binary")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "uninstall",
		Short:   "Remove the GRUB entry and the installed image",
		Long:    "Remove the generator script, any custom.cfg entry, and the installed image, then re-run grub-mkconfig. You must run this command as root.",
		GroupID: gInstallation,
		RunE: func(_ *cobra.Command, _ []string) error {
			inst, err := newInstaller()
			if err != nil {
				return err
			}
			inst.SkipMkconfig = skipMkconfig

			if err := inst.Uninstall(); err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall: %w", err)
			}

			logrus.Info("uninstalled")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMkconfig, "skip-mkconfig", false, "do not run grub-mkconfig (run it yourself later)")

	return cmd
}
