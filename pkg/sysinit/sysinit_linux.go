//go:build linux

package sysinit

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// MountAll mounts the system pseudo-filesystems. Required mounts abort with
// an error; MayFail mounts only log.
func MountAll() error {
	for _, mp := range SystemMountPoints() {
		if err := mount(mp); err != nil {
			if mp.MayFail {
				logrus.Warnf("optional mount %s failed: %v", mp.Path, err)
				continue
			}
			return err
		}
	}
	return nil
}

func mount(mp MountPoint) error {
	if err := os.MkdirAll(mp.Path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", mp.Path, err)
	}
	if err := unix.Mount(mp.FSType, mp.Path, mp.FSType, 0, ""); err != nil {
		// Already mounted is fine: the kernel may have mounted devtmpfs.
		if errors.Is(err, unix.EBUSY) {
			return nil
		}
		return fmt.Errorf("mount %s: %w", mp.Path, err)
	}
	return nil
}

// LoadModules loads every module file found under dir, sorted by name so a
// numeric prefix can force ordering. A missing directory is not an error.
func LoadModules(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("list module dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := LoadModule(path, ""); err != nil {
			logrus.Warnf("load module %s: %v", name, err)
		}
	}
	return nil
}

// LoadModule loads one kernel module, preferring finit_module and falling
// back to init_module with in-process decompression for gzipped files.
func LoadModule(path, params string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open module: %w", err)
	}
	defer f.Close()

	err = finitModule(f, params)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errors.ErrUnsupported) {
		return err
	}
	return initModule(f, params)
}

func finitModule(f *os.File, params string) error {
	var flags int
	if strings.HasSuffix(f.Name(), ".gz") || strings.HasSuffix(f.Name(), ".xz") || strings.HasSuffix(f.Name(), ".zst") {
		flags |= unix.MODULE_INIT_COMPRESSED_FILE
	}

	if err := unix.FinitModule(int(f.Fd()), params, flags); err != nil {
		if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
			return fmt.Errorf("finit_module: %w", errors.ErrUnsupported)
		}
		return fmt.Errorf("finit_module: %w", err)
	}
	return nil
}

func initModule(f *os.File, params string) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind module: %w", err)
	}

	var reader io.Reader = f
	if strings.HasSuffix(f.Name(), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("gunzip module: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	var data bytes.Buffer
	if _, err := io.Copy(&data, reader); err != nil {
		return fmt.Errorf("read module: %w", err)
	}

	if err := unix.InitModule(data.Bytes(), params); err != nil {
		return fmt.Errorf("init_module: %w", err)
	}
	return nil
}

// Poweroff syncs filesystems and powers the machine off. It does not return
// on success.
func Poweroff() error {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_POWER_OFF); err != nil {
		return fmt.Errorf("poweroff: %w", err)
	}
	return nil
}

// Reboot syncs filesystems and restarts the machine.
func Reboot() error {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}
