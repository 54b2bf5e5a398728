// Package resolver maps request paths onto files inside the serving
// root. The root is a sandbox: traversal is prevented by construction,
// with an allow-list of path-component kinds rather than a
// canonicalize-then-compare check, so the guarantee holds even for
// components that do not exist on disk yet.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	serrors "github.com/liveserve/liveserve/internal/errors"
)

const indexFile = "index.html"

// Resolve maps an attacker-controlled request tail to a file under
// baseDir. baseDir must already be absolute and validated to be a
// directory. The result is re-verified on every call; nothing is
// cached, since the filesystem can change between requests.
//
// Directory targets require an index.html inside them. Both invalid
// and missing paths surface as errors that map to 404, so callers leak
// nothing about which check failed.
func Resolve(baseDir, tail string) (string, error) {
	target, err := sanitize(baseDir, tail)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", serrors.NotFound(tail)
	}

	if info.IsDir() {
		index := filepath.Join(target, indexFile)
		indexInfo, err := os.Stat(index)
		if err != nil || !indexInfo.Mode().IsRegular() {
			return "", serrors.NotFound(tail)
		}
		return index, nil
	}

	if !info.Mode().IsRegular() {
		return "", serrors.NotFound(tail)
	}

	return target, nil
}

// sanitize joins the tail onto baseDir component by component. Plain
// names are kept, current-dir segments are skipped, and everything
// else (parent-dir or absolute segments) rejects the whole tail.
func sanitize(baseDir, tail string) (string, error) {
	trimmed := strings.TrimLeft(tail, "/")

	if trimmed == "" {
		return filepath.Join(baseDir, indexFile), nil
	}

	target := baseDir
	hasComponent := false

	for _, part := range strings.Split(trimmed, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", serrors.InvalidPath(tail)
		}
		if filepath.VolumeName(part) != "" || strings.ContainsRune(part, filepath.Separator) {
			return "", serrors.InvalidPath(tail)
		}
		target = filepath.Join(target, part)
		hasComponent = true
	}

	if !hasComponent && strings.HasSuffix(tail, "/") {
		target = filepath.Join(target, indexFile)
	}

	return target, nil
}
