package browser

import (
	"os"

	"github.com/go-rod/rod/lib/launcher"
)

// LookFunc searches a browser binary on the host.
type LookFunc func() (string, bool)

// HasBundle reports whether an application bundle exists at path. Bundles
// are directories; nothing inside is read.
func HasBundle(path string) bool {
	if path == "" {
		return false
	}
	i, err := os.Stat(path)
	return err == nil && i.IsDir()
}

// LookPath searches a Chrome or Chromium binary in the usual install
// locations of the host.
func LookPath() (string, bool) {
	return launcher.LookPath()
}
