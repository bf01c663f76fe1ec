package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the payload format changes; stale entries then read as misses.
const listingCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 of the source file content.
type Digest [sha256.Size]byte

func cacheKey(source []byte) Digest {
	return sha256.Sum256(source)
}

// ListingCache stores rendered listings on disk, keyed by source digest.
// Safe for concurrent use.
type ListingCache struct {
	mu  sync.RWMutex
	dir string
}

// ListingPayload is the cached artifact for one source file.
type ListingPayload struct {
	Schema  uint16
	Path    string
	Listing string
}

// OpenListingCache initializes a cache under the user cache directory,
// honoring XDG_CACHE_HOME.
func OpenListingCache(app string) (*ListingCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		base = filepath.Join(home, ".cache")
	}

	return OpenListingCacheAt(filepath.Join(base, app))
}

// OpenListingCacheAt initializes a cache at an explicit directory.
func OpenListingCacheAt(dir string) (*ListingCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &ListingCache{dir: dir}, nil
}

func (c *ListingCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+".mp")
}

// Put serializes a payload to a temp file and atomically renames it into
// place, so readers never see a partial entry. A nil cache drops the write.
func (c *ListingCache) Put(key Digest, payload *ListingPayload) error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)

	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}

	defer func() {
		// Best-effort cleanup; after a successful rename the temp name is
		// already gone.
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), p)
}

// Get reads a payload; a missing entry or schema mismatch is a miss, not an
// error. A nil cache always misses.
func (c *ListingCache) Get(key Digest, out *ListingPayload) (bool, error) {
	if c == nil {
		return false, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}

	if out.Schema != listingCacheSchemaVersion {
		return false, nil
	}

	return true, nil
}

// DropAll removes every cached entry.
func (c *ListingCache) DropAll() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".mp" {
			continue
		}

		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}
