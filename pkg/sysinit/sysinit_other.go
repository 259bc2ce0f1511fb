//go:build !linux

package sysinit

import "errors"

var errUnsupportedOS = errors.New("only supported on linux")

func MountAll() error                  { return errUnsupportedOS }
func LoadModules(string) error         { return errUnsupportedOS }
func LoadModule(string, string) error  { return errUnsupportedOS }
func Poweroff() error                  { return errUnsupportedOS }
func Reboot() error                    { return errUnsupportedOS }
