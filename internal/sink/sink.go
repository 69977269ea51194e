// Package sink saves raw fetched markup to the local filesystem.
package sink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kennygrant/sanitize"
)

// HTMLSink writes one snapshot file per fetched URL. The database row remains
// the source of truth; the sink exists so a parse regression can be debugged
// against the markup that produced the stored metadata.
type HTMLSink struct {
	root string
}

// New returns a sink rooted at dir, creating it if needed.
func New(root string) (*HTMLSink, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("sink directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create sink dir %s: %w", root, err)
	}
	return &HTMLSink{root: root}, nil
}

// Store writes body to a file derived from rawURL and returns the path.
// Repeated ingestion of the same URL overwrites the previous snapshot,
// matching the store's one-record-per-URL contract.
func (s *HTMLSink) Store(ctx context.Context, rawURL string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	target := filepath.Join(s.root, fileName(rawURL))
	if err := os.WriteFile(target, body, 0o600); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", target, err)
	}
	return target, nil
}

// fileName derives a filesystem name from rawURL. Sanitizing can collapse
// distinct URLs into the same stem, so a short hash of the raw URL keeps
// snapshots one-per-URL like the store.
func fileName(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		name = u.Host + "_" + strings.Trim(u.Path, "/")
	}
	name = sanitize.BaseName(name)
	if name == "" {
		name = "snapshot"
	}
	sum := sha256.Sum256([]byte(rawURL))
	return name + "-" + hex.EncodeToString(sum[:4]) + ".html"
}
