// Package assets stores downloaded binary assets (movie posters) on disk
// under content-addressed names, so re-ingesting a page never duplicates
// files.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	fetchTimeout  = 10 * time.Second
	fetchRetries  = 3
	fetchBackoff  = 2 * time.Second
	redirectLimit = 5
)

// ErrAssetNotFound is returned by Delete when the named file does not exist.
var ErrAssetNotFound = errors.New("asset not found")

// Store persists assets in a single flat directory. A file's name is the
// sha256 hex digest of its bytes plus the original extension, so identical
// content always maps to the same file.
type Store struct {
	dir    string
	client *http.Client
}

// NewStore creates the asset directory if needed and returns a Store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir %s: %w", dir, err)
	}
	return &Store{
		dir: dir,
		client: &http.Client{
			Timeout: fetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= redirectLimit {
					return fmt.Errorf("stopped after %d redirects", redirectLimit)
				}
				return nil
			},
		},
	}, nil
}

// Save writes data under its content-addressed name and returns the filename.
// Saving the same bytes twice is a no-op that returns the same name. The
// extension is lowercased so casing differences never split one asset in two.
func (s *Store) Save(data []byte, ext string) (string, error) {
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + strings.ToLower(ext)

	full := filepath.Join(s.dir, name)
	if _, err := os.Stat(full); err == nil {
		return name, nil
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write asset %s: %w", name, err)
	}
	log.Debug().Str("file", name).Int("bytes", len(data)).Msg("asset stored")
	return name, nil
}

// SaveFromURL downloads the asset at rawurl and stores it. The extension is
// taken from the URL path. Transient fetch failures are retried a fixed
// number of times before giving up.
func (s *Store) SaveFromURL(ctx context.Context, rawurl string) (string, error) {
	data, err := s.Fetch(ctx, rawurl)
	if err != nil {
		return "", err
	}
	return s.Save(data, extOf(rawurl))
}

// Fetch downloads rawurl with the store's retry policy and returns the body.
func (s *Store) Fetch(ctx context.Context, rawurl string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchRetries; attempt++ {
		data, err := s.fetchOnce(ctx, rawurl)
		if err == nil {
			return data, nil
		}
		lastErr = err
		log.Warn().Err(err).Str("url", rawurl).Int("attempt", attempt).Msg("asset fetch failed")

		if attempt < fetchRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(fetchBackoff):
			}
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", rawurl, lastErr)
}

func (s *Store) fetchOnce(ctx context.Context, rawurl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Path returns the absolute on-disk path of a stored asset.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Delete removes a stored asset. Deleting a missing asset returns
// ErrAssetNotFound.
func (s *Store) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrAssetNotFound
	}
	return err
}

// extOf extracts the lowercased file extension from a URL path, dot included.
// URLs without an extension yield an empty string.
func extOf(rawurl string) string {
	if u, err := url.Parse(rawurl); err == nil {
		return strings.ToLower(path.Ext(u.Path))
	}
	return strings.ToLower(path.Ext(rawurl))
}
