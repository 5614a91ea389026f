package decoder

import (
	"context"
	"log"
	"sync"
	"time"
)

const DefaultScriptTTL = 30 * time.Minute

// Fetcher downloads a script body
type Fetcher func(url string) ([]byte, error)

type scriptCacheEntry struct {
	body  string
	expAt time.Time
}

// simple decoder script cache by URL, shared by every Remote
var (
	scriptCache   = make(map[string]scriptCacheEntry)
	scriptCacheMu sync.Mutex
)

// Remote runs the script published at URL, refetching it once TTL has passed
type Remote struct {
	URL     string
	Fetch   Fetcher
	TTL     time.Duration
	Timeout time.Duration
}

func (r *Remote) script() (string, error) {
	scriptCacheMu.Lock()
	entry, ok := scriptCache[r.URL]
	if ok && time.Now().Before(entry.expAt) {
		scriptCacheMu.Unlock()
		return entry.body, nil
	}
	scriptCacheMu.Unlock()

	body, err := r.Fetch(r.URL)
	if err != nil {
		if ok {
			log.Println("[decoder.script.stale]", r.URL, err.Error())
			return entry.body, nil
		}
		return "", err
	}

	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultScriptTTL
	}
	scriptCacheMu.Lock()
	scriptCache[r.URL] = scriptCacheEntry{body: string(body), expAt: time.Now().Add(ttl)}
	scriptCacheMu.Unlock()
	return string(body), nil
}

func (r *Remote) Decode(ctx context.Context, token, meta string, blob []byte) (Result, error) {
	body, err := r.script()
	if err != nil {
		return Result{}, err
	}
	return NewGojaRunner(r.URL, body, r.Timeout).Decode(ctx, token, meta, blob)
}

func (r *Remote) Func() Func {
	return r.Decode
}

// PurgeScripts drops every cached script
func PurgeScripts() {
	scriptCacheMu.Lock()
	scriptCache = make(map[string]scriptCacheEntry)
	scriptCacheMu.Unlock()
}
