package decoder

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubScript = `
function get_args(token, meta, blob) {
	var view = new Uint8Array(blob);
	var sum = 0;
	for (var i = 0; i < view.length; i++) { sum += view[i]; }
	return ["secret-" + token, meta.split("").reverse().join(""), "v" + view.length, String(sum), "133.0"];
}
`

func TestGojaRunner_Decode(t *testing.T) {
	r := NewGojaRunner("stub.js", stubScript, time.Second)
	res, err := r.Decode(context.Background(), "xrax", "abc", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, Result{
		Secret:         "secret-xrax",
		ID:             "cba",
		Version:        "v3",
		Kid:            "6",
		BrowserVersion: "133.0",
	}, res)
	assert.NoError(t, res.Validate())
}

func TestGojaRunner_ModuleAndAsync(t *testing.T) {
	script := `
export async function get_args(token, meta, blob) {
	return [token, meta, "1", "2", "3"];
}
`
	res, err := NewGojaRunner("module.js", script, time.Second).Decode(context.Background(), "t", "m", nil)
	require.NoError(t, err)
	assert.Equal(t, "t", res.Secret)
	assert.Equal(t, "m", res.ID)
	assert.Equal(t, "3", res.BrowserVersion)
}

func TestGojaRunner_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{name: "empty", script: ""},
		{name: "syntax", script: "function ("},
		{name: "missing entry point", script: "var x = 1;"},
		{name: "throws", script: `function get_args() { throw new Error("nope"); }`},
		{name: "wrong arity", script: `function get_args() { return ["a", "b"]; }`},
		{name: "null", script: `function get_args() { return null; }`},
		{name: "rejected", script: `async function get_args() { throw new Error("nope"); }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGojaRunner(tt.name, tt.script, time.Second).Decode(context.Background(), "t", "m", nil)
			assert.Error(t, err)
		})
	}
}

func TestGojaRunner_Timeout(t *testing.T) {
	script := `function get_args() { for (;;) {} }`
	start := time.Now()
	_, err := NewGojaRunner("loop.js", script, 50*time.Millisecond).Decode(context.Background(), "t", "m", nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestResult_Validate(t *testing.T) {
	assert.ErrorIs(t, Result{ID: "x"}.Validate(), ErrEmptySecret)
	assert.Error(t, Result{Secret: "x"}.Validate())
}

func TestStatic(t *testing.T) {
	want := Result{Secret: "s", ID: "i"}
	got, err := Static(want)(context.Background(), "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Static(want)(ctx, "", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemote_CachesScript(t *testing.T) {
	PurgeScripts()
	t.Cleanup(PurgeScripts)

	var calls int32
	r := &Remote{
		URL: "https://scripts.example/decoder.js",
		Fetch: func(url string) ([]byte, error) {
			atomic.AddInt32(&calls, 1)
			return []byte(stubScript), nil
		},
		TTL:     time.Hour,
		Timeout: time.Second,
	}
	for i := 0; i < 3; i++ {
		res, err := r.Func()(context.Background(), "a", "b", []byte{9})
		require.NoError(t, err)
		assert.Equal(t, "secret-a", res.Secret)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRemote_StaleOnFetchError(t *testing.T) {
	PurgeScripts()
	t.Cleanup(PurgeScripts)

	url := "https://scripts.example/stale.js"
	scriptCacheMu.Lock()
	scriptCache[url] = scriptCacheEntry{body: stubScript, expAt: time.Now().Add(-time.Minute)}
	scriptCacheMu.Unlock()

	r := &Remote{
		URL: url,
		Fetch: func(string) ([]byte, error) {
			return nil, errors.New("offline")
		},
	}
	res, err := r.Decode(context.Background(), "a", "b", nil)
	require.NoError(t, err)
	assert.Equal(t, "secret-a", res.Secret)

	PurgeScripts()
	_, err = r.Decode(context.Background(), "a", "b", nil)
	assert.EqualError(t, err, "offline")
}
