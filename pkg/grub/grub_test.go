package grub

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKernel(t *testing.T) {
	boot := t.TempDir()
	for _, name := range []string{
		"vmlinuz-6.2.0-39-generic",
		"vmlinuz-6.10.1-lowlatency",
		"vmlinuz-6.9.12-generic",
		"initrd.img-6.10.1-lowlatency",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(boot, name), nil, 0o644))
	}

	kernel, err := DetectKernel(boot)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(boot, "vmlinuz-6.10.1-lowlatency"), kernel)
}

func TestDetectKernelEmpty(t *testing.T) {
	_, err := DetectKernel(t.TempDir())
	require.Error(t, err)
}

func TestCompareVersionNames(t *testing.T) {
	tests := []struct {
		a, b string
		less bool
	}{
		{"vmlinuz-6.2", "vmlinuz-6.10", true},
		{"vmlinuz-5.15.0-91", "vmlinuz-5.15.0-100", true},
		{"vmlinuz-6.1", "vmlinuz-6.1", false},
		{"vmlinuz-6.1", "vmlinuz-6.1.1", true},
	}

	for _, tt := range tests {
		got := compareVersionNames(tt.a, tt.b) < 0
		assert.Equal(t, tt.less, got, "compare %q %q", tt.a, tt.b)
	}
}

func TestBootRelative(t *testing.T) {
	separateBoot := "/dev/sda1 / ext4 rw 0 0\n/dev/sda2 /boot ext4 rw 0 0\n"
	singleRoot := "/dev/sda1 / ext4 rw 0 0\n"

	assert.Equal(t, "/grubpower-initramfs.img",
		BootRelative("/boot/grubpower-initramfs.img", separateBoot))
	assert.Equal(t, "/boot/grubpower-initramfs.img",
		BootRelative("/boot/grubpower-initramfs.img", singleRoot))
	// A path outside /boot passes through unchanged either way.
	assert.Equal(t, "/srv/img", BootRelative("/srv/img", separateBoot))
}

func TestEntryRender(t *testing.T) {
	e := Entry{
		Root:        "hd0,gpt2",
		Kernel:      "/vmlinuz-6.10.1",
		Initrd:      "/grubpower-initramfs.img",
		ExtraParams: "quiet",
	}

	out := e.Render()
	assert.Contains(t, out, `menuentry "`+DefaultTitle+`" {`)
	assert.Contains(t, out, "set root=(hd0,gpt2)")
	assert.Contains(t, out, "linux /vmlinuz-6.10.1 quiet\n")
	assert.Contains(t, out, "initrd /grubpower-initramfs.img\n")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestEntryRenderAutoRoot(t *testing.T) {
	e := Entry{
		Title:  "Custom title",
		Root:   "auto",
		Kernel: "/vmlinuz",
		Initrd: "/img",
	}

	out := e.Render()
	assert.Contains(t, out, `menuentry "Custom title" {`)
	assert.Contains(t, out, "search --no-floppy --file /img --set=root")
	assert.NotContains(t, out, "set root=")
	// No extra params means a bare linux line.
	assert.Contains(t, out, "linux /vmlinuz\n")
}

func TestGeneratorScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grub.d", "40_grubpower")
	entry := Entry{Root: "auto", Kernel: "/vmlinuz", Initrd: "/img"}

	require.NoError(t, WriteGeneratorScript(path, entry))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(b)
	assert.True(t, strings.HasPrefix(content, "#!/bin/sh\n"))
	assert.Contains(t, content, Marker)
	assert.Contains(t, content, "exec tail -n +4 $0\n")
	// Line 4 onward is the stanza itself.
	lines := strings.SplitN(content, "\n", 4)
	assert.True(t, strings.HasPrefix(lines[3], "menuentry"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	require.NoError(t, RemoveGeneratorScript(path))
	assert.NoFileExists(t, path)
}

func TestRemoveGeneratorScriptRefusesForeign(t *testing.T) {
	path := filepath.Join(t.TempDir(), "40_custom")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o755))

	require.Error(t, RemoveGeneratorScript(path))
	assert.FileExists(t, path)
}

func TestRemoveGeneratorScriptMissingIsOK(t *testing.T) {
	require.NoError(t, RemoveGeneratorScript(filepath.Join(t.TempDir(), "nope")))
}

func TestCustomCfgRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grub", "custom.cfg")
	entry := Entry{Root: "auto", Kernel: "/vmlinuz", Initrd: "/img"}

	require.NoError(t, AppendCustomCfg(path, entry))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), beginMarker)
	assert.Contains(t, string(b), endMarker)
	assert.Contains(t, string(b), "menuentry")

	// Re-append replaces the block instead of stacking a second one.
	require.NoError(t, AppendCustomCfg(path, entry))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), beginMarker))

	// Removing the only block deletes the file.
	require.NoError(t, RemoveCustomCfg(path))
	assert.NoFileExists(t, path)
}

func TestCustomCfgKeepsForeignEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.cfg")
	foreign := "menuentry \"Memtest\" {\n\tlinux16 /memtest\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(foreign), 0o644))

	entry := Entry{Root: "auto", Kernel: "/vmlinuz", Initrd: "/img"}
	require.NoError(t, AppendCustomCfg(path, entry))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Memtest")
	assert.Contains(t, string(b), beginMarker)

	require.NoError(t, RemoveCustomCfg(path))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Memtest")
	assert.NotContains(t, string(b), beginMarker)
}

func TestRemoveCustomCfgMissingIsOK(t *testing.T) {
	require.NoError(t, RemoveCustomCfg(filepath.Join(t.TempDir(), "nope")))
}
