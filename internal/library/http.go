package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxSongSize bounds a downloaded song file.
const maxSongSize = 16 << 20

// HTTPLibrary reads songs from a server exposing GET <base>/songs (a JSON
// array of ids) and GET <base>/songs/<id> (the file).
type HTTPLibrary struct {
	base   string
	client *http.Client
}

// NewHTTPLibrary returns a library for base. A nil client gets a default
// one with a 30s timeout.
func NewHTTPLibrary(base string, client *http.Client) *HTTPLibrary {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPLibrary{base: strings.TrimRight(base, "/"), client: client}
}

// ListSongs fetches the id list, keeping only MIDI file names.
func (l *HTTPLibrary) ListSongs(ctx context.Context) ([]string, error) {
	body, err := l.get(ctx, l.base+"/songs", 1<<20)
	if err != nil {
		return nil, err
	}
	var all []string
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, fmt.Errorf("failed to decode song list: %w", err)
	}
	ids := all[:0]
	for _, id := range all {
		if IsMIDIFile(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// OpenSong downloads one song.
func (l *HTTPLibrary) OpenSong(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSongID, id)
	}
	return l.get(ctx, l.base+"/songs/"+url.PathEscape(id), maxSongSize)
}

func (l *HTTPLibrary) get(ctx context.Context, u string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", u, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u, err)
	}
	return body, nil
}
