//go:build linux

package monitor

import (
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

const inputClassDir = "/sys/class/input"

// SW_LID bit in the input switch bitmap.
const swLid = 0

// evdevLid reads the lid switch state from an input event device via the
// EVIOCGSW ioctl.
type evdevLid struct {
	path string
}

// probeEvdevLid scans input devices for one whose name contains "lid" and
// resolves its event device node. Returns nil if none is found.
func probeEvdevLid(fs *sysfs.FS) *evdevLid {
	for _, input := range fs.List(inputClassDir) {
		if !strings.HasPrefix(input, "input") {
			continue
		}

		name, err := fs.ReadString(inputClassDir, input, "name")
		if err != nil || !strings.Contains(strings.ToLower(name), "lid") {
			continue
		}

		for _, child := range fs.List(inputClassDir, input) {
			if strings.HasPrefix(child, "event") {
				return &evdevLid{path: "/dev/input/" + child}
			}
		}
	}
	return nil
}

// eviocgsw builds the EVIOCGSW ioctl request number for a buffer of the
// given size: _IOC(_IOC_READ, 'E', 0x1b, size).
func eviocgsw(size int) uintptr {
	return uintptr(2)<<30 | uintptr(size)<<16 | uintptr('E')<<8 | 0x1b
}

func (e *evdevLid) state() (LidState, bool) {
	fd, err := unix.Open(e.path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return LidOpen, false
	}
	defer unix.Close(fd)

	var bits [8]byte
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), eviocgsw(len(bits)), uintptr(unsafe.Pointer(&bits[0])))
	if errno != 0 {
		return LidOpen, false
	}

	if bits[swLid/8]&(1<<(swLid%8)) != 0 {
		return LidClosed, true
	}
	return LidOpen, true
}
