package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/initramfs"
	"github.com/GEROGIANNIS/GrubPower/pkg/install"
)

var initBinaryPath = ""

func newInstaller() (*install.Installer, error) {
	cfg, err := config.NewFile(configPath)
	if err != nil {
		return nil, err
	}
	return &install.Installer{
		Config:     cfg,
		InitBinary: initBinaryPath,
	}, nil
}

// NewBuildCommand .
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build",
		Short:   "Build the initramfs image",
		Long:    "Assemble the initramfs image from the current configuration and the grubpower-init payload. The image is left in BUILD_DIR; use 'install' to register it with GRUB.",
		GroupID: gInstallation,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inst, err := newInstaller()
			if err != nil {
				return err
			}

			imagePath, _, err := inst.Build()
			if err != nil {
				return err
			}

			cmd.Printf("image built: %s\n", imagePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&initBinaryPath, "init-binary", "", "path of the grubpower-init payload binary")

	return cmd
}

// NewDebugRebuildCommand .
func NewDebugRebuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "debug-rebuild",
		Short:   "Rebuild the image with debug logging and print its manifest",
		GroupID: gAdvanced,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logrus.SetLevel(logrus.DebugLevel)

			inst, err := newInstaller()
			if err != nil {
				return err
			}

			imagePath, manifest, err := inst.Build()
			if err != nil {
				return err
			}

			cmd.Printf("image: %s\n", imagePath)
			cmd.Println("manifest:")
			for _, name := range manifest {
				cmd.Printf("  %s\n", name)
			}

			// Cross-check by reading the archive back.
			f, err := os.Open(imagePath)
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := initramfs.List(f)
			if err != nil {
				return err
			}
			cmd.Printf("archive verified, %d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&initBinaryPath, "init-binary", "", "path of the grubpower-init payload binary")

	return cmd
}
