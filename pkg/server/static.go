package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

// StaticFileHandler serves files from an fs.FS with ETags and cache
// headers. With a fallback set, unknown paths without an extension are
// answered with the fallback file so client side routes load the app.
type StaticFileHandler struct {
	fsys         fs.FS
	cacheControl string
	indexFiles   []string
	useETag      bool
	fallback     string

	mu     sync.Mutex
	etags  map[string]string
	loaded time.Time
}

// NewStaticFileHandler creates a new static file handler.
func NewStaticFileHandler(fsys fs.FS) *StaticFileHandler {
	return &StaticFileHandler{
		fsys:         fsys,
		cacheControl: "public, max-age=3600",
		indexFiles:   []string{"index.html", "index.htm"},
		useETag:      true,
		etags:        make(map[string]string),
		loaded:       time.Now(),
	}
}

// SetCacheControl sets the Cache-Control header value.
func (h *StaticFileHandler) SetCacheControl(value string) {
	h.cacheControl = value
}

// SetIndexFiles sets the files to try when serving a directory.
func (h *StaticFileHandler) SetIndexFiles(files []string) {
	h.indexFiles = files
}

// EnableETag enables or disables ETag generation.
func (h *StaticFileHandler) EnableETag(enabled bool) {
	h.useETag = enabled
}

// SetFallback sets the file served for unknown extensionless paths.
func (h *StaticFileHandler) SetFallback(name string) {
	h.fallback = name
}

// ServeHTTP implements http.Handler interface.
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	name, err := ValidatePath(r.URL.Path)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	fi, err := fs.Stat(h.fsys, name)
	if err == nil && fi.IsDir() {
		fi, err = nil, fs.ErrNotExist
		for _, index := range h.indexFiles {
			candidate := path.Join(name, index)
			if ifi, ierr := fs.Stat(h.fsys, candidate); ierr == nil && !ifi.IsDir() {
				name, fi, err = candidate, ifi, nil
				break
			}
		}
	}
	if errors.Is(err, fs.ErrNotExist) && h.fallback != "" && path.Ext(name) == "" {
		name = h.fallback
		fi, err = fs.Stat(h.fsys, name)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.serveFile(w, r, name, fi)
}

// serveFile serves a single file with proper headers and caching.
func (h *StaticFileHandler) serveFile(w http.ResponseWriter, r *http.Request, name string, fi fs.FileInfo) {
	data, err := fs.ReadFile(h.fsys, name)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if h.cacheControl != "" {
		w.Header().Set("Cache-Control", h.cacheControl)
	}
	if h.useETag {
		w.Header().Set("ETag", h.etag(name, fi, data))
	}

	// Embedded files have a zero mod time.
	modTime := fi.ModTime()
	if modTime.IsZero() {
		modTime = h.loaded
	}
	http.ServeContent(w, r, name, modTime, bytes.NewReader(data))
}

func (h *StaticFileHandler) etag(name string, fi fs.FileInfo, data []byte) string {
	key := fmt.Sprintf("%s:%d:%d", name, fi.Size(), fi.ModTime().UnixNano())
	h.mu.Lock()
	defer h.mu.Unlock()
	if tag, ok := h.etags[key]; ok {
		return tag
	}
	sum := sha256.New()
	io.Copy(sum, bytes.NewReader(data))
	tag := `"` + hex.EncodeToString(sum.Sum(nil))[:16] + `"`
	h.etags[key] = tag
	return tag
}

// ValidatePath turns a URL path into an fs.FS name, rejecting paths that
// try to leave the root.
func ValidatePath(urlPath string) (string, error) {
	if strings.Contains(urlPath, "\x00") {
		return "", errors.New("invalid path")
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", errors.New("path traversal")
		}
	}
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", errors.New("invalid path")
	}
	return name, nil
}
