package web

import (
	"io/fs"
	"testing"
)

func TestFS(t *testing.T) {
	for _, name := range []string{"index.html", "app.js", "style.css", "wallpaper.svg"} {
		if _, err := fs.Stat(FS(), name); err != nil {
			t.Errorf("expected %s in FS, got %v", name, err)
		}
	}
}
