// Package initramfs assembles the compressed boot image that carries the
// monitor as its init process.
package initramfs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cavaliergopher/cpio"
)

// Spec describes the image contents.
type Spec struct {
	// InitPath is the host path of the payload binary packed at /init.
	InitPath string
	// Config is the rendered configuration packed at /etc/grubpower.conf.
	Config []byte
	// ModuleFiles are host paths of kernel module files packed under
	// /lib/modules, in the given order.
	ModuleFiles []string
}

// skeleton directories created inside the image. The init process mounts
// pseudo-filesystems onto the first three.
var skeleton = []string{
	"dev",
	"proc",
	"sys",
	"run",
	"tmp",
	"etc",
	"lib",
	"lib/modules",
}

const configImagePath = "etc/grubpower.conf"

// Write streams a gzip-compressed newc cpio archive to w and returns the
// manifest of archive entry names.
func Write(w io.Writer, spec Spec) ([]string, error) {
	gz := gzip.NewWriter(w)
	cw := cpio.NewWriter(gz)

	var manifest []string
	add := func(name string) { manifest = append(manifest, name) }

	for _, dir := range skeleton {
		if err := writeDir(cw, dir); err != nil {
			return nil, err
		}
		add(dir)
	}

	if err := writeFileFromHost(cw, "init", spec.InitPath, 0o755); err != nil {
		return nil, err
	}
	add("init")

	if len(spec.Config) > 0 {
		if err := writeFileFromBytes(cw, configImagePath, spec.Config, 0o644); err != nil {
			return nil, err
		}
		add(configImagePath)
	}

	for _, mod := range spec.ModuleFiles {
		name := filepath.Join("lib/modules", filepath.Base(mod))
		if err := writeFileFromHost(cw, name, mod, 0o644); err != nil {
			return nil, err
		}
		add(name)
	}

	if err := cw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close compressor: %w", err)
	}

	return manifest, nil
}

// BuildFile writes the image to path, creating parent directories as
// needed. The file is written to a temp name and renamed into place.
func BuildFile(path string, spec Spec) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".grubpower-*")
	if err != nil {
		return nil, fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	manifest, err := Write(tmp, spec)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close image: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("move image into place: %w", err)
	}
	return manifest, nil
}

// List reads back the entry names of an image produced by Write. Used by
// the debug rebuild to print the manifest.
func List(r io.Reader) ([]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open compressor: %w", err)
	}
	defer gz.Close()

	cr := cpio.NewReader(gz)
	var names []string
	for {
		hdr, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	return names, nil
}

func writeDir(w *cpio.Writer, name string) error {
	hdr := &cpio.Header{
		Name:  name,
		Mode:  cpio.TypeDir | 0o755,
		Links: 2,
	}
	if err := w.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write dir %s: %w", name, err)
	}
	return nil
}

func writeFileFromHost(w *cpio.Writer, name, hostPath string, mode cpio.FileMode) error {
	f, err := os.Open(hostPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", hostPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", hostPath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", hostPath)
	}

	hdr := &cpio.Header{
		Name: name,
		Mode: cpio.TypeReg | mode,
		Size: info.Size(),
	}
	if err := w.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write body %s: %w", name, err)
	}
	return nil
}

func writeFileFromBytes(w *cpio.Writer, name string, data []byte, mode cpio.FileMode) error {
	hdr := &cpio.Header{
		Name: name,
		Mode: cpio.TypeReg | mode,
		Size: int64(len(data)),
	}
	if err := w.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write body %s: %w", name, err)
	}
	return nil
}
