package util

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/zc310/headers"
)

// StatusError is returned for any non-2xx response
type StatusError struct {
	Code int
	Url  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.Url)
}

type HttpWrapper struct {
	headers map[string]string
	Timeout time.Duration
}

func (x *HttpWrapper) SetHeader(k, v string) {
	if x.headers == nil {
		x.headers = make(map[string]string)
	}
	x.headers[k] = v
}

// SetHeaders adds h over the current headers
func (x *HttpWrapper) SetHeaders(h map[string]string) {
	for k, v := range h {
		x.SetHeader(k, v)
	}
}

func (x *HttpWrapper) GetHeaders() map[string]string {
	return x.headers
}

// Clone copies the headers so a request can add its own (e.g. a per-embed referer)
func (x *HttpWrapper) Clone() *HttpWrapper {
	c := &HttpWrapper{Timeout: x.Timeout}
	for k, v := range x.headers {
		c.SetHeader(k, v)
	}
	return c
}

func (x *HttpWrapper) addHeaderParams(req *http.Request) {
	for k, v := range x.headers {
		req.Header.Set(k, v)
	}
}

func (x *HttpWrapper) client() *http.Client {
	timeout := x.Timeout
	if timeout <= 0 {
		timeout = AppConfig.Timeout
	}
	return &http.Client{Timeout: timeout}
}

// decodes the body according to the response Content-Encoding
func (x *HttpWrapper) decodeEncoding(resp *http.Response) ([]byte, error) {
	switch resp.Header.Get(headers.ContentEncoding) {
	case "br":
		return io.ReadAll(brotli.NewReader(resp.Body))
	case "gzip":
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gr.Close() }()
		return io.ReadAll(gr)
	case "deflate":
		zr := flate.NewReader(resp.Body)
		defer func() { _ = zr.Close() }()
		return io.ReadAll(zr)
	default:
		return io.ReadAll(resp.Body)
	}
}

func (x *HttpWrapper) do(method, requestUrl string) (http.Header, []byte, error) {
	req, err := http.NewRequest(method, requestUrl, nil)
	if err != nil {
		return nil, nil, err
	}
	x.addHeaderParams(req)

	resp, err := x.client().Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil, &StatusError{Code: resp.StatusCode, Url: requestUrl}
	}

	if method == http.MethodHead {
		return resp.Header, nil, nil
	}
	b, err := x.decodeEncoding(resp)
	return resp.Header, b, err
}

func (x *HttpWrapper) Get(requestUrl string) ([]byte, error) {
	_, b, err := x.do(http.MethodGet, requestUrl)
	return b, err
}

func (x *HttpWrapper) GetResponse(requestUrl string) (map[string][]string, []byte, error) {
	h, b, err := x.do(http.MethodGet, requestUrl)
	return h, b, err
}

// Head returns only the response headers, e.g. for an ETag
func (x *HttpWrapper) Head(requestUrl string) (map[string][]string, error) {
	h, _, err := x.do(http.MethodHead, requestUrl)
	return h, err
}
