package browser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasBundle(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "Google Chrome.app")
	if err := os.Mkdir(bundle, 0755); err != nil {
		t.Fatalf("fail to create bundle: %s", err)
	}
	file := filepath.Join(dir, "Chromium.app")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("fail to create file: %s", err)
	}
	data := []struct {
		Path string
		Want bool
	}{
		{Path: bundle, Want: true},
		{Path: file, Want: false},
		{Path: filepath.Join(dir, "Firefox.app"), Want: false},
		{Path: "", Want: false},
	}
	for _, d := range data {
		if got := HasBundle(d.Path); got != d.Want {
			t.Errorf("%q: want %t, got %t", d.Path, d.Want, got)
		}
	}
}
