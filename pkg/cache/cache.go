// Package cache stores rewrite results on disk, keyed by everything
// that went into the request.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/allencass/aistudio/pkg/utils"
)

// Entry is one cached rewrite
type Entry struct {
	Model     string    `json:"model"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a directory of JSON entries. It is safe for concurrent use:
// writes land through a rename, so readers see whole files only.
type Store struct {
	dir string
}

// DefaultDir is the per-user cache location
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache dir: %w", err)
	}
	return filepath.Join(base, "aistudio", "rewrites"), nil
}

// New returns a store rooted at dir, or at DefaultDir when dir is empty.
func New(dir string) (*Store, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Key hashes parts in order. Each part is length-prefixed so moving
// text between parts changes the key.
func Key(parts ...string) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Path returns the file backing key
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get returns the entry for key. A miss is (Entry{}, false, nil).
func (s *Store) Get(key string) (Entry, bool, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("failed to parse cache entry %s: %w", key, err)
	}
	return e, true, nil
}

// Put stores e under key, stamping CreatedAt when unset
func (s *Store) Put(key string, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return utils.WriteFile(s.Path(key), data)
}
