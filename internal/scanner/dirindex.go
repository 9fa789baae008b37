package scanner

import (
	"io/fs"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultIndexSize is the number of directory listings kept in memory
const DefaultIndexSize = 1024

// DirIndex answers "does dir/name exist right now" from cached directory
// listings, so a collision check costs one ReadDir per directory rather
// than one Lstat per candidate.
type DirIndex struct {
	listings *lru.Cache[string, map[string]fs.DirEntry]
}

// NewDirIndex creates an index holding up to size listings
func NewDirIndex(size int) (*DirIndex, error) {
	if size <= 0 {
		size = DefaultIndexSize
	}
	cache, err := lru.New[string, map[string]fs.DirEntry](size)
	if err != nil {
		return nil, err
	}
	return &DirIndex{listings: cache}, nil
}

// Lookup returns the entry info for dir/name. Entries of any type count,
// so a directory named like a rename target blocks the rename.
func (x *DirIndex) Lookup(dir, name string) (os.FileInfo, bool) {
	listing := x.listing(dir)
	entry, ok := listing[name]
	if !ok {
		return nil, false
	}

	info, err := entry.Info()
	if err != nil {
		// Listed but removed since
		return nil, false
	}
	return info, true
}

// Invalidate drops the cached listing for dir
func (x *DirIndex) Invalidate(dir string) {
	x.listings.Remove(dir)
}

func (x *DirIndex) listing(dir string) map[string]fs.DirEntry {
	if cached, ok := x.listings.Get(dir); ok {
		return cached
	}

	// ReadDir returns what it read before an error; an unreadable
	// directory caches as empty
	entries, _ := os.ReadDir(dir)
	listing := make(map[string]fs.DirEntry, len(entries))
	for _, e := range entries {
		listing[e.Name()] = e
	}
	x.listings.Add(dir, listing)
	return listing
}
