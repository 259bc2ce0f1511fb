// Package sysinit covers the PID-1 duties of the initramfs environment:
// mounting pseudo-filesystems, loading kernel modules, and issuing the
// final power-off or reboot.
package sysinit

// MountPoint describes one pseudo-filesystem mount.
type MountPoint struct {
	Path   string
	FSType string
	// MayFail marks mounts whose absence is tolerable; a failure is logged
	// and the remaining mounts are still attempted.
	MayFail bool
}

// SystemMountPoints returns the mounts the monitor environment needs before
// sysfs and procfs attributes are reachable.
func SystemMountPoints() []MountPoint {
	return []MountPoint{
		{Path: "/proc", FSType: "proc"},
		{Path: "/sys", FSType: "sysfs"},
		{Path: "/dev", FSType: "devtmpfs"},
		{Path: "/run", FSType: "tmpfs", MayFail: true},
		{Path: "/tmp", FSType: "tmpfs", MayFail: true},
	}
}
