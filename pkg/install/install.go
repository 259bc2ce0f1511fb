// Package install orchestrates building the initramfs image and wiring it
// into GRUB, with rollback on partial failure.
package install

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/grub"
	"github.com/GEROGIANNIS/GrubPower/pkg/initramfs"
)

// Installer performs build, install, and uninstall against a loaded config.
type Installer struct {
	Config config.Config

	// InitBinary is the path of the grubpower-init payload. Empty means
	// look next to the current executable.
	InitBinary string
	// Direct writes the entry into GRUB's custom.cfg instead of an
	// /etc/grub.d generator script, and skips grub-mkconfig.
	Direct bool
	// GrubCfg is the grub.cfg path passed to grub-mkconfig.
	GrubCfg string
	// SkipMkconfig leaves grub.cfg regeneration to the operator.
	SkipMkconfig bool
}

// Build assembles the image in BUILD_DIR and returns its path and manifest.
func (i *Installer) Build() (string, []string, error) {
	initBin, err := i.initBinary()
	if err != nil {
		return "", nil, err
	}

	spec := initramfs.Spec{
		InitPath:    initBin,
		Config:      renderImageConfig(i.Config),
		ModuleFiles: i.moduleFiles(),
	}

	imagePath := filepath.Join(i.Config.BuildDir(), i.Config.InitramfsName())
	manifest, err := initramfs.BuildFile(imagePath, spec)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build image: %w", err)
	}

	logrus.Infof("built %s (%d entries)", imagePath, len(manifest))
	return imagePath, manifest, nil
}

// Install builds the image, copies it to OUTPUT_DIR, registers the GRUB
// entry, and regenerates grub.cfg. Completed steps are rolled back in
// reverse order if a later one fails.
func (i *Installer) Install() (err error) {
	var undo UndoStack
	defer func() {
		if err != nil {
			undo.Rollback()
		}
	}()

	imagePath, _, err := i.Build()
	if err != nil {
		return err
	}

	dest := filepath.Join(i.Config.OutputDir(), i.Config.InitramfsName())
	if err = copyFile(imagePath, dest); err != nil {
		return fmt.Errorf("failed to install image to %s: %w", dest, err)
	}
	undo.Push("remove "+dest, func() error { return os.Remove(dest) })
	logrus.Infof("installed image to %s", dest)

	entry, err := i.menuEntry(dest)
	if err != nil {
		return err
	}

	if i.Direct {
		customCfg := filepath.Join(filepath.Dir(i.grubCfg()), "custom.cfg")
		if err = grub.AppendCustomCfg(customCfg, entry); err != nil {
			return fmt.Errorf("failed to write %s: %w", customCfg, err)
		}
		undo.Push("remove entry from "+customCfg, func() error { return grub.RemoveCustomCfg(customCfg) })
		logrus.Infof("registered menu entry in %s", customCfg)
		return nil
	}

	script := i.Config.GrubCustom()
	if err = grub.WriteGeneratorScript(script, entry); err != nil {
		return fmt.Errorf("failed to write %s: %w", script, err)
	}
	undo.Push("remove "+script, func() error { return grub.RemoveGeneratorScript(script) })
	logrus.Infof("wrote generator script %s", script)

	if !i.SkipMkconfig {
		if err = grub.RunMkconfig(i.grubCfg()); err != nil {
			return err
		}
	}

	return nil
}

// Uninstall removes the GRUB entry and the installed image, then
// regenerates grub.cfg. Individual missing pieces are not errors.
func (i *Installer) Uninstall() error {
	removedAny := false

	script := i.Config.GrubCustom()
	if _, err := os.Stat(script); err == nil {
		if err := grub.RemoveGeneratorScript(script); err != nil {
			return err
		}
		logrus.Infof("removed %s", script)
		removedAny = true
	}

	customCfg := filepath.Join(filepath.Dir(i.grubCfg()), "custom.cfg")
	if _, err := os.Stat(customCfg); err == nil {
		if err := grub.RemoveCustomCfg(customCfg); err != nil {
			return err
		}
		logrus.Infof("cleaned %s", customCfg)
		removedAny = true
	}

	dest := filepath.Join(i.Config.OutputDir(), i.Config.InitramfsName())
	if err := os.Remove(dest); err == nil {
		logrus.Infof("removed %s", dest)
		removedAny = true
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", dest, err)
	}

	if !removedAny {
		logrus.Warn("nothing to uninstall")
		return nil
	}

	if !i.SkipMkconfig {
		return grub.RunMkconfig(i.grubCfg())
	}
	return nil
}

func (i *Installer) menuEntry(imageDest string) (grub.Entry, error) {
	kernel := i.Config.KernelPath()
	if kernel == "" || kernel == "auto" {
		detected, err := grub.DetectKernel("/boot")
		if err != nil {
			return grub.Entry{}, err
		}
		kernel = detected
	}
	if _, err := os.Stat(kernel); err != nil {
		return grub.Entry{}, fmt.Errorf("kernel image %s not accessible: %w", kernel, err)
	}

	mounts := grub.ReadMounts()
	return grub.Entry{
		Root:        i.Config.GrubRoot(),
		Kernel:      grub.BootRelative(kernel, mounts),
		Initrd:      grub.BootRelative(imageDest, mounts),
		ExtraParams: i.Config.ExtraKernelParams(),
	}, nil
}

func (i *Installer) grubCfg() string {
	if i.GrubCfg != "" {
		return i.GrubCfg
	}
	return grub.DefaultGrubCfg()
}

func (i *Installer) initBinary() (string, error) {
	if i.InitBinary != "" {
		if _, err := os.Stat(i.InitBinary); err != nil {
			return "", fmt.Errorf("init payload %s not accessible: %w", i.InitBinary, err)
		}
		return i.InitBinary, nil
	}

	exe, err := os.Executable()
	if err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "grubpower-init")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	candidate := "/usr/lib/grubpower/grubpower-init"
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	return "", fmt.Errorf("grubpower-init payload not found, pass --init-binary")
}

// moduleFiles resolves EXTRA_MODULES entries. Only path entries are packed;
// bare names would need host module resolution the image cannot rely on.
func (i *Installer) moduleFiles() []string {
	var files []string
	for _, mod := range i.Config.ExtraModules() {
		if !strings.Contains(mod, "/") {
			logrus.Warnf("EXTRA_MODULES entry %q is not a path, skipping", mod)
			continue
		}
		if _, err := os.Stat(mod); err != nil {
			logrus.Warnf("EXTRA_MODULES entry %q not accessible, skipping: %v", mod, err)
			continue
		}
		files = append(files, mod)
	}
	return files
}

// renderImageConfig renders the runtime subset of the configuration packed
// into the image.
func renderImageConfig(cfg config.Config) []byte {
	keys := []string{
		config.KeyMinBattery,
		config.KeyDisableAutosuspend,
		config.KeyEnableLogging,
		config.KeyLogFile,
		config.KeySelectPorts,
		config.KeyLidControl,
		config.KeyHandleACPI,
	}

	var b strings.Builder
	b.WriteString("# GrubPower runtime configuration\n")
	for _, key := range keys {
		v, err := cfg.Get(key)
		if err != nil {
			continue
		}
		b.WriteString(key + "=" + v + "\n")
	}
	return []byte(b.String())
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
