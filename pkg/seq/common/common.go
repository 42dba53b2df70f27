// 29 Apr 2020

// Package common has a few constants and helpers used by the commands
// and their tests.
package common

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

const (
	ExitSuccess = iota
	ExitFailure
)

// WrtTemp writes a string to a temporary file and returns
// the filename. It is used all over the place in testing.
func WrtTemp(s string) (string, error) {
	fTmp, err := os.CreateTemp("", "_del_me_testing")
	if err != nil {
		return "", fmt.Errorf("tempfile fail: %w", err)
	}

	if _, err := io.WriteString(fTmp, s); err != nil {
		fTmp.Close()
		return "", fmt.Errorf("writing string to temp file %v: %w", fTmp.Name(), err)
	}
	name := fTmp.Name()
	fTmp.Close()
	return name, nil
}

// WarnExists checks if a filename exists and prints a warning
// if we will trash a file. It does not return an error.
func WarnExists(fname string) {
	if fname == "" || fname == "-" {
		return
	}
	if _, err := os.Stat(fname); err == nil {
		log.Warnf("trashing old version of %s", fname)
	}
}
