//go:build linux || darwin || freebsd || netbsd || openbsd

package sysinfo

import "golang.org/x/sys/unix"

func uname() (system, release, version string) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", "", ""
	}
	return unix.ByteSliceToString(u.Sysname[:]),
		unix.ByteSliceToString(u.Release[:]),
		unix.ByteSliceToString(u.Version[:])
}
