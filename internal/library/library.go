// Package library lists and opens the songs a session can pick from.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// ErrInvalidSongID is returned for ids that escape the library root.
var ErrInvalidSongID = errors.New("invalid song id")

// DirLibrary serves the .mid and .midi files of one directory.
type DirLibrary struct {
	root string
}

// NewDirLibrary returns a library over root. The directory is read on every
// listing so files added while running are picked up.
func NewDirLibrary(root string) *DirLibrary {
	return &DirLibrary{root: root}
}

// ListSongs returns the sorted file names of all MIDI files in the root.
func (l *DirLibrary) ListSongs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs in %s: %w", l.root, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !IsMIDIFile(e.Name()) {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// OpenSong reads the file named id.
func (l *DirLibrary) OpenSong(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || id != filepath.Base(id) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSongID, id)
	}
	data, err := os.ReadFile(filepath.Join(l.root, id))
	if err != nil {
		return nil, fmt.Errorf("failed to open song %s: %w", id, err)
	}
	return data, nil
}

// IsMIDIFile reports whether name carries a .mid or .midi extension.
func IsMIDIFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mid", ".midi":
		return true
	}
	return false
}

// Pick lists lib and returns one id chosen with random, which must return a
// uniform value in [0,n).
func Pick(ctx context.Context, lib contracts.SongLibrary, random func(n int) int) (string, error) {
	ids, err := lib.ListSongs(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", contracts.ErrNoSongsAvailable
	}
	return ids[random(len(ids))], nil
}
