package server

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shapestone/shape-httpd/internal/arena"
	"github.com/shapestone/shape-httpd/pkg/http"
)

// ChunkSize is the size of the reads used to stream a file body.
const ChunkSize = 8192

// Canonicalize resolves root+reqPath to an absolute path with symlinks
// evaluated and reports whether it lies inside the equally resolved root.
// A path that does not exist is never inside.
func Canonicalize(root, reqPath string) (string, bool) {
	realRoot, err := realPath(root)
	if err != nil {
		return "", false
	}
	candidate, err := realPath(filepath.Join(root, filepath.FromSlash(reqPath)))
	if err != nil {
		return "", false
	}
	if candidate == realRoot {
		return candidate, true
	}
	prefix := realRoot
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return candidate, strings.HasPrefix(candidate, prefix)
}

func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ETag is the file size followed by its modification time in Unix seconds,
// with no separator or quotes.
func ETag(info fs.FileInfo) string {
	return formatETag(info.Size(), info.ModTime().Unix())
}

func formatETag(size, mtime int64) string {
	var buf [40]byte
	b := strconv.AppendInt(buf[:0], size, 10)
	b = strconv.AppendInt(b, mtime, 10)
	return string(b)
}

// openStatic opens the file for reqPath under root and prepares the
// response headers. It returns the open file, registered in a for release,
// and the response status: 200, 304, 403 or 404.
//
// Content-Length, Content-Type and Etag are set before the status is
// decided, so a 304 carries them too.
func openStatic(a *arena.Arena, resp *Response, root, reqPath string) (*os.File, int) {
	path, ok := Canonicalize(root, reqPath)
	if !ok {
		return nil, http.StatusNotFound
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fileErrorStatus(err)
	}
	if !info.Mode().IsRegular() {
		return nil, http.StatusNotFound
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fileErrorStatus(err)
	}
	a.Track(f)

	tag := ETag(info)
	resp.Set("Content-Length", "%d", info.Size())
	resp.Set("Content-Type", "%s", http.ContentType(path))
	resp.Set("Etag", "%s", tag)

	if resp.Get("If-None-Match") == tag {
		return f, http.StatusNotModified
	}
	return f, http.StatusOK
}

func fileErrorStatus(err error) int {
	if errors.Is(err, fs.ErrPermission) {
		return http.StatusForbidden
	}
	return http.StatusNotFound
}

// copyBody streams f to w in ChunkSize reads using a buffer from a. A read
// error ends the body early without an error since the head is already
// sent; only write errors are returned.
func copyBody(a *arena.Arena, w io.Writer, f *os.File) error {
	buf := a.Buffer(ChunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
		}
		if rerr != nil || n == 0 {
			return nil
		}
	}
}
