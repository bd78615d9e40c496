package preflight

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInterpreter = errors.New("python interpreter not found")
	ErrInstaller   = errors.New("package manager not found")
	ErrInstall     = errors.New("library not installed")
	ErrScript      = errors.New("script not found")
	ErrAsset       = errors.New("asset not found")
	ErrTimeout     = errors.New("script timed out")
)

// ExitError reports the non zero status of the script.
type ExitError struct {
	Script string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Script, e.Code)
}

// ExitCode gives the status the process should terminate with after err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) && exit.Code > 0 {
		return exit.Code
	}
	return 1
}
