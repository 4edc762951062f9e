//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package sysinfo

func uname() (system, release, version string) {
	return "", "", ""
}
