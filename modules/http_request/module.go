// Package http_request is a sink that sends each batch as a JSON document to
// an HTTP endpoint.
package http_request

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vk/stringalong/internal/ctxlog"
	"github.com/vk/stringalong/internal/registry"
)

// DefaultTimeout bounds a single request when the block sets none.
const DefaultTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Options are the arguments of a `sink "http"` block.
type Options struct {
	URL     string            `hcl:"url"`
	Method  string            `hcl:"method,optional"`
	Headers map[string]string `hcl:"headers,optional"`
	Timeout string            `hcl:"timeout,optional"`
}

// Sink posts batches to a fixed URL.
type Sink struct {
	client  *http.Client
	url     string
	method  string
	headers map[string]string
}

// New validates opts and returns an HTTP sink.
func New(ctx context.Context, _ io.Writer, opts any) (registry.Sink, error) {
	o, ok := opts.(*Options)
	if !ok || o == nil {
		return nil, errors.New("http sink requires options with a url")
	}
	u, err := url.Parse(o.URL)
	if err != nil || !u.IsAbs() {
		return nil, errors.WithHint(errors.Newf("invalid http url %q", o.URL), "use an absolute URL such as http://localhost:8080/hook")
	}

	method := strings.ToUpper(o.Method)
	if method == "" {
		method = http.MethodPost
	}

	timeout := DefaultTimeout
	if o.Timeout != "" {
		t, err := time.ParseDuration(o.Timeout)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid http timeout %q", o.Timeout)
		}
		timeout = t
	}

	ctxlog.FromContext(ctx).Debug("HTTP sink configured.", "method", method, "url", u.String(), "timeout", timeout)
	return &Sink{
		client:  &http.Client{Timeout: timeout},
		url:     u.String(),
		method:  method,
		headers: o.Headers,
	}, nil
}

// Emit sends one batch. Any non-2xx response is an error.
func (s *Sink) Emit(ctx context.Context, b *registry.Batch) error {
	logger := ctxlog.FromContext(ctx)

	body, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(err, "failed to encode batch")
	}

	req, err := http.NewRequestWithContext(ctx, s.method, s.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	logger.Info("Sending batch.", "method", s.method, "url", s.url, "results", len(b.Results))
	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()
	logger.Debug("Received HTTP response.", "status", resp.Status)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Newf("http sink: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink("http", &registry.RegisteredSink{
		NewOptions:  func() any { return new(Options) },
		OptionsType: reflect.TypeOf(Options{}),
		New:         New,
	})
}
