// Package sysinfo describes the host the generated command will run on.
package sysinfo

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"
)

// Environment describes the runtime environment.
type Environment struct {
	OS           string // runtime.GOOS
	System       string // kernel name, e.g. Linux, Darwin
	Release      string
	Version      string
	Distribution string // Linux only, from /etc/os-release
	Shell        string
}

// Collect probes the current host.
func Collect() *Environment {
	env := &Environment{
		OS:    runtime.GOOS,
		Shell: os.Getenv("SHELL"),
	}

	env.System, env.Release, env.Version = uname()
	if env.System == "" {
		env.System = systemName(runtime.GOOS)
	}

	if runtime.GOOS == "linux" {
		if f, err := os.Open("/etc/os-release"); err == nil {
			env.Distribution = parseOSRelease(f)
			f.Close()
		}
	}

	return env
}

// Describe renders the environment for the prompt.
func (e *Environment) Describe() string {
	fields := []string{e.System}
	if e.Release != "" {
		fields = append(fields, e.Release)
	}
	if e.Version != "" {
		fields = append(fields, e.Version)
	}
	info := "OSsystem: " + strings.Join(fields, " ")

	if e.OS == "linux" && e.Distribution != "" {
		info += "\nDistribution: " + e.Distribution
	}
	if e.Shell != "" {
		info += "\nShell: " + e.Shell
	}
	return info
}

// parseOSRelease returns PRETTY_NAME, falling back to NAME.
func parseOSRelease(r io.Reader) string {
	var name, pretty string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "PRETTY_NAME":
			pretty = value
		case "NAME":
			name = value
		}
	}
	if pretty != "" {
		return pretty
	}
	return name
}

func systemName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	}
	return goos
}
