// Package grub handles kernel path detection and GRUB menu entry
// management. grub-mkconfig itself is invoked as a black box.
package grub

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Marker identifies entries and scripts written by GrubPower so uninstall
// never touches foreign configuration.
const Marker = "GrubPower generated entry"

const (
	beginMarker = "### BEGIN " + Marker + " ###"
	endMarker   = "### END " + Marker + " ###"
)

// DefaultTitle is the menu entry title.
const DefaultTitle = "GrubPower: keep USB ports powered"

// DetectKernel picks the newest kernel image under bootDir by version-aware
// name comparison of vmlinuz-* files.
func DetectKernel(bootDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(bootDir, "vmlinuz-*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no kernel image found under %s", bootDir)
	}

	sort.Slice(matches, func(i, j int) bool {
		return compareVersionNames(matches[i], matches[j]) < 0
	})
	kernel := matches[len(matches)-1]

	logrus.Debugf("detected kernel %s", kernel)
	return kernel, nil
}

// compareVersionNames compares two kernel file names chunk-wise so that
// vmlinuz-6.10 sorts after vmlinuz-6.2.
func compareVersionNames(a, b string) int {
	as, bs := splitChunks(a), splitChunks(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if ai != bi {
				return ai - bi
			}
			continue
		}
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

func splitChunks(s string) []string {
	var chunks []string
	var cur strings.Builder
	var curDigit bool

	for _, r := range s {
		digit := r >= '0' && r <= '9'
		if cur.Len() > 0 && digit != curDigit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		curDigit = digit
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// BootRelative converts a host path below /boot into the path GRUB sees on
// the boot partition. mounts is the content of /proc/self/mounts; when
// /boot is its own mount point the /boot prefix is stripped.
func BootRelative(path, mounts string) string {
	for _, line := range strings.Split(mounts, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "/boot" {
			if rel := strings.TrimPrefix(path, "/boot"); rel != path && rel != "" {
				return rel
			}
		}
	}
	return path
}

// ReadMounts returns the current mount table for BootRelative.
func ReadMounts() string {
	b, err := os.ReadFile("/proc/self/mounts")
	if err != nil {
		return ""
	}
	return string(b)
}

// Entry is one GrubPower menu entry. Kernel and Initrd are GRUB paths,
// relative to the boot partition root.
type Entry struct {
	Title string
	// Root is the GRUB root device, or "auto" to locate the partition by
	// searching for the initrd file.
	Root        string
	Kernel      string
	Initrd      string
	ExtraParams string
}

// Render produces the menuentry stanza.
func (e Entry) Render() string {
	title := e.Title
	if title == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "menuentry \"%s\" {\n", title)
	if e.Root == "" || e.Root == "auto" {
		fmt.Fprintf(&b, "\tsearch --no-floppy --file %s --set=root\n", e.Initrd)
	} else {
		fmt.Fprintf(&b, "\tset root=(%s)\n", e.Root)
	}

	params := strings.TrimSpace(e.ExtraParams)
	if params != "" {
		fmt.Fprintf(&b, "\tlinux %s %s\n", e.Kernel, params)
	} else {
		fmt.Fprintf(&b, "\tlinux %s\n", e.Kernel)
	}
	fmt.Fprintf(&b, "\tinitrd %s\n", e.Initrd)
	b.WriteString("}\n")
	return b.String()
}

// WriteGeneratorScript writes an executable /etc/grub.d script that emits
// the entry when grub-mkconfig runs.
func WriteGeneratorScript(path string, entry Entry) error {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# " + Marker + " - do not edit, remove with 'grubpower uninstall'\n")
	b.WriteString("exec tail -n +4 $0\n")
	b.WriteString(entry.Render())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create grub.d dir: %w", err)
	}
	return os.WriteFile(path, []byte(b.String()), 0o755)
}

// RemoveGeneratorScript deletes the generator script. It refuses to remove
// a file that does not carry the GrubPower marker.
func RemoveGeneratorScript(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !strings.Contains(string(b), Marker) {
		return fmt.Errorf("%s was not written by grubpower, refusing to remove", path)
	}
	return os.Remove(path)
}

// AppendCustomCfg writes the entry into a custom.cfg file GRUB sources
// directly, replacing any previous GrubPower block. This is the
// direct-install fallback when /etc/grub.d is not usable.
func AppendCustomCfg(path string, entry Entry) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	content := stripBlock(string(existing))
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += beginMarker + "\n" + entry.Render() + endMarker + "\n"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create grub dir: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// RemoveCustomCfg strips the GrubPower block from custom.cfg, deleting the
// file when nothing else remains.
func RemoveCustomCfg(path string) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	content := stripBlock(string(existing))
	if strings.TrimSpace(content) == "" {
		return os.Remove(path)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// stripBlock removes the marked GrubPower block, keeping foreign entries.
func stripBlock(content string) string {
	lines := strings.Split(content, "\n")
	var out []string
	inBlock := false

	for _, line := range lines {
		switch {
		case strings.TrimSpace(line) == beginMarker:
			inBlock = true
		case strings.TrimSpace(line) == endMarker:
			inBlock = false
		case !inBlock:
			out = append(out, line)
		}
	}

	result := strings.Join(out, "\n")
	return strings.TrimLeft(result, "\n")
}

// RunMkconfig regenerates the GRUB configuration.
func RunMkconfig(output string) error {
	mkconfig, err := exec.LookPath("grub-mkconfig")
	if err != nil {
		// Fedora and friends name it grub2-mkconfig.
		mkconfig, err = exec.LookPath("grub2-mkconfig")
		if err != nil {
			return fmt.Errorf("grub-mkconfig not found in PATH")
		}
	}

	logrus.Infof("running %s -o %s", mkconfig, output)
	cmd := exec.Command(mkconfig, "-o", output)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("grub-mkconfig failed: %w", err)
	}
	return nil
}

// DefaultGrubCfg returns the grub.cfg path for RunMkconfig.
func DefaultGrubCfg() string {
	for _, p := range []string{"/boot/grub/grub.cfg", "/boot/grub2/grub.cfg"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "/boot/grub/grub.cfg"
}
