package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	appLog "kioskcal/internal/log"
)

// maxFeedBytes caps a single downloaded feed.
const maxFeedBytes = 16 << 20

// Source is one ICS subscription feeding the board.
type Source struct {
	ID    string
	URL   string
	Owner string // fallback owner for events without ORGANIZER
}

// FetchResult is the body obtained for one source.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

// Fetcher downloads ICS feeds with conditional requests. The last good body
// of every feed stays on disk and stands in whenever the feed is unchanged
// or unreachable.
type Fetcher struct {
	client *http.Client
	cache  feedCache
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = filepath.Join("cache", "ics")
	}
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  feedCache{dir: cacheDir},
	}
}

// FetchAll refreshes every source concurrently. Results keep source order
// and only include sources that produced a body; failures are logged and
// returned.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	type outcome struct {
		res FetchResult
		err error
	}
	outcomes := make([]outcome, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.FetchOne(ctx, src)
			outcomes[i] = outcome{res, err}
		}()
	}
	wg.Wait()

	results := make([]FetchResult, 0, len(sources))
	var errs []error
	for i, o := range outcomes {
		if o.err != nil {
			appLog.Error("ics fetch failed", o.err, "id", sources[i].ID, "url", redactURL(sources[i].URL))
			errs = append(errs, o.err)
			continue
		}
		results = append(results, o.res)
	}
	return results, errs
}

// FetchOne refreshes a single source.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, fmt.Errorf("ics source %q: empty URL", src.ID)
	}

	slot := f.cache.slot(src.URL)
	meta, body := slot.load()
	stale := func(cause error) (FetchResult, error) {
		if len(body) == 0 {
			return FetchResult{}, cause
		}
		appLog.Error("ics feed unavailable; showing cached copy", cause,
			"id", src.ID, "url", redactURL(src.URL), "cached_at", meta.UpdatedAt)
		return FetchResult{Source: src, Body: body, FromCache: true}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if len(body) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return stale(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if len(body) == 0 {
			return FetchResult{}, errors.New("ics: 304 Not Modified without a cached body")
		}
		appLog.Debug("ics feed unchanged", "id", src.ID)
		return FetchResult{Source: src, Body: body, FromCache: true}, nil

	case http.StatusOK:
		fresh, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
		if err != nil {
			return stale(err)
		}
		if len(fresh) > maxFeedBytes {
			return stale(fmt.Errorf("ics feed %s exceeds %d bytes", redactURL(src.URL), maxFeedBytes))
		}
		next := feedMeta{
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := slot.store(next, fresh); err != nil {
			appLog.Error("ics cache write failed", err, "id", src.ID)
		}
		appLog.Info("ics feed refreshed", "id", src.ID, "bytes", len(fresh))
		return FetchResult{Source: src, Body: fresh}, nil

	default:
		return stale(fmt.Errorf("ics fetch %s: %s", redactURL(src.URL), resp.Status))
	}
}

// feedMeta holds the HTTP validators of the cached body.
type feedMeta struct {
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type feedCache struct {
	dir string
}

// cacheSlot is the directory holding one feed's body and validators.
type cacheSlot string

func (c feedCache) slot(u string) cacheSlot {
	sum := sha256.Sum256([]byte(u))
	return cacheSlot(filepath.Join(c.dir, hex.EncodeToString(sum[:8])))
}

// load returns whatever is cached; a missing or corrupt slot is empty.
func (s cacheSlot) load() (feedMeta, []byte) {
	var meta feedMeta
	body, err := os.ReadFile(filepath.Join(string(s), "body.ics"))
	if err != nil {
		return meta, nil
	}
	if data, err := os.ReadFile(filepath.Join(string(s), "meta.json")); err == nil {
		_ = json.Unmarshal(data, &meta)
	}
	return meta, body
}

// store writes the body before the validators so they never describe a
// body that is not there.
func (s cacheSlot) store(meta feedMeta, body []byte) error {
	if err := os.MkdirAll(string(s), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(string(s), "body.ics"), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(string(s), "meta.json"), data, 0o600)
}

// redactURL keeps only scheme and host; subscription paths carry tokens.
func redactURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "ics://...(redacted)"
	}
	return parsed.Scheme + "://" + parsed.Host + "/...(redacted)"
}
