package core

import (
	"errors"
	"io/fs"
	"os"
)

// IsRoot reports whether the process runs with an effective uid of 0.
func IsRoot() bool {
	return os.Geteuid() == 0
}

// Elevate prefixes the command with sudo unless root is set.
func Elevate(root bool, name string, args ...string) (string, []string) {
	if root {
		return name, args
	}
	return "sudo", append([]string{name}, args...)
}

// IsPermission reports whether err is an EACCES/EPERM style failure.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
