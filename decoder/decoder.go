// Package decoder wraps the remotely published script that turns an embed's
// token, page meta and wasm blob into the key material for its sources call.
// The script is treated as a black box.
package decoder

import (
	"context"
	"errors"
)

// Result is what the decoder script hands back, in call order
type Result struct {
	Secret         string `json:"secret"`
	ID             string `json:"id"`
	Version        string `json:"version"`
	Kid            string `json:"kid"`
	BrowserVersion string `json:"browser_version"`
}

// Func produces a Result for one embed. Implementations may block on the
// network or a script engine and must honour ctx.
type Func func(ctx context.Context, token, meta string, blob []byte) (Result, error)

var ErrEmptySecret = errors.New("decoder returned an empty secret")

// Validate checks the parts callers cannot work without
func (r Result) Validate() error {
	if r.Secret == "" {
		return ErrEmptySecret
	}
	if r.ID == "" {
		return errors.New("decoder returned an empty id")
	}
	return nil
}

// Static always returns r. Handy for tests and for secrets obtained out of band.
func Static(r Result) Func {
	return func(ctx context.Context, token, meta string, blob []byte) (Result, error) {
		return r, ctx.Err()
	}
}
