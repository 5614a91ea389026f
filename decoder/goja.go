package decoder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/dop251/goja"
)

const (
	entryPoint     = "get_args"
	defaultTimeout = 10 * time.Second
)

// goja has no module loader, so top level exports are flattened to globals
var exportRe = regexp.MustCompile(`(?m)^(\s*)export\s+(default\s+)?`)

// GojaRunner evaluates a decoder script and calls its get_args(token, meta, blob)
// function. blob is passed as an ArrayBuffer. get_args must return, or resolve
// to, an array of five strings.
type GojaRunner struct {
	Name    string
	Script  string
	Timeout time.Duration
}

func NewGojaRunner(name, script string, timeout time.Duration) *GojaRunner {
	return &GojaRunner{Name: name, Script: script, Timeout: timeout}
}

func (r *GojaRunner) Decode(ctx context.Context, token, meta string, blob []byte) (Result, error) {
	if r == nil || r.Script == "" {
		return Result{}, errors.New("goja runner: script not set")
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vm := goja.New()
	_ = vm.Set("console", map[string]any{
		"log": func(args ...any) { log.Println("[decoder]", args) },
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	if _, err := vm.RunScript(r.Name, exportRe.ReplaceAllString(r.Script, "$1")); err != nil {
		return Result{}, fmt.Errorf("run script: %w", err)
	}

	fn, ok := goja.AssertFunction(vm.Get(entryPoint))
	if !ok {
		return Result{}, fmt.Errorf("%s function not found in script", entryPoint)
	}
	res, err := fn(goja.Undefined(), vm.ToValue(token), vm.ToValue(meta), vm.ToValue(vm.NewArrayBuffer(blob)))
	if err != nil {
		return Result{}, fmt.Errorf("%s error: %w", entryPoint, err)
	}

	if p, ok := res.Export().(*goja.Promise); ok {
		switch p.State() {
		case goja.PromiseStateFulfilled:
			res = p.Result()
		case goja.PromiseStateRejected:
			return Result{}, fmt.Errorf("%s rejected: %v", entryPoint, p.Result())
		default:
			return Result{}, fmt.Errorf("%s promise still pending", entryPoint)
		}
	}
	if goja.IsUndefined(res) || goja.IsNull(res) {
		return Result{}, fmt.Errorf("%s returned undefined/null", entryPoint)
	}

	var values []string
	if err = vm.ExportTo(res, &values); err != nil {
		return Result{}, fmt.Errorf("unexpected %s return type: %w", entryPoint, err)
	}
	if len(values) != 5 {
		return Result{}, fmt.Errorf("%s returned %d values, want 5", entryPoint, len(values))
	}
	return Result{
		Secret:         values[0],
		ID:             values[1],
		Version:        values[2],
		Kid:            values[3],
		BrowserVersion: values[4],
	}, nil
}

// Func adapts the runner to the decoder boundary
func (r *GojaRunner) Func() Func {
	return r.Decode
}
