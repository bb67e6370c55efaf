//go:build !unix

package audio

import (
	"os"

	"github.com/cockroachdb/errors"
)

var errPauseUnsupported = errors.New("pausing a player process is not supported on this platform")

func suspendProcess(_ *os.Process) error {
	return errPauseUnsupported
}

func resumeProcess(_ *os.Process) error {
	return errPauseUnsupported
}
