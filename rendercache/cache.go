// Package rendercache memoizes rendered rasters keyed by subject, snapshot and
// render mode.
package rendercache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/nvr-ai/go-cutout/images"
)

// DefaultMaxBytes bounds the pixel bytes held by a cache built with New(0).
const DefaultMaxBytes = 256 << 20

// Cache is a cost-bounded raster cache. Concurrent GetOrRender calls for the
// same key share a single render.
type Cache struct {
	store *ristretto.Cache
	group singleflight.Group
}

// Key combines a subject checksum, a snapshot hash and a render mode.
//
// Arguments:
// - subject: The checksum of the source raster.
// - snapshot: The hash of the edit snapshot.
// - mode: The render mode name.
//
// Returns:
// - The cache key.
func Key(subject, snapshot uint64, mode string) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], subject)
	binary.LittleEndian.PutUint64(buf[8:], snapshot)

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(mode)
	return d.Sum64()
}

// New creates a cache holding at most maxBytes of pixel data. A maxBytes of
// zero or less selects DefaultMaxBytes.
func New(maxBytes int64) (*Cache, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	// Roughly 10 counters per expected entry, assuming ~64KB rasters.
	counters := maxBytes / (64 << 10) * 10
	if counters < 1000 {
		counters = 1000
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: counters,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "render cache")
	}
	return &Cache{store: store}, nil
}

// Get returns the raster cached under key.
func (c *Cache) Get(key uint64) (*images.Image, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	img, ok := v.(*images.Image)
	return img, ok
}

// Set caches img under key, costed by its pixel bytes. Admission is
// asynchronous; call Wait to make the write visible.
//
// Returns:
// - False if the write was dropped.
func (c *Cache) Set(key uint64, img *images.Image) bool {
	if img.IsEmpty() {
		return false
	}
	return c.store.Set(key, img, int64(len(img.Pixels.Pix)))
}

// GetOrRender returns the cached raster for key or calls render to build it.
// Failed renders are not cached.
//
// Returns:
// - The raster.
// - Whether it came from the cache.
// - The render error, if any.
func (c *Cache) GetOrRender(key uint64, render func() (*images.Image, error)) (*images.Image, bool, error) {
	if img, ok := c.Get(key); ok {
		return img, true, nil
	}

	v, err, _ := c.group.Do(string(binary.LittleEndian.AppendUint64(nil, key)), func() (any, error) {
		img, err := render()
		if err != nil {
			return nil, err
		}
		c.Set(key, img)
		return img, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*images.Image), false, nil
}

// Wait blocks until pending writes are applied.
func (c *Cache) Wait() {
	c.store.Wait()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.store.Clear()
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.store.Close()
}
