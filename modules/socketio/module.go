// Package socketio is a sink that emits each batch as an event on a
// socket.io server.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vk/stringalong/internal/ctxlog"
	"github.com/vk/stringalong/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Defaults for optional arguments.
const (
	DefaultEvent   = "generated"
	DefaultTimeout = 10 * time.Second
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Options are the arguments of a `sink "socketio"` block.
type Options struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	AckEvent           string `hcl:"ack_event,optional"`
	Timeout            string `hcl:"timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// Sink emits batches over socket.io. Each Emit opens its own connection.
type Sink struct {
	opts    Options
	baseURL string
	path    string
	timeout time.Duration
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	err error
}

// New validates opts and returns a socket.io sink.
func New(ctx context.Context, _ io.Writer, opts any) (registry.Sink, error) {
	logger := ctxlog.FromContext(ctx)
	o, ok := opts.(*Options)
	if !ok || o == nil || o.URL == "" {
		return nil, errors.WithHint(errors.New("socketio sink requires a url"), `set url = "http://host:port/socket.io/"`)
	}

	parsedURL, err := url.Parse(o.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse URL")
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, errors.Newf("socketio url %q must be absolute", o.URL)
	}

	s := &Sink{
		opts:    *o,
		baseURL: fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host),
		path:    parsedURL.Path,
		timeout: DefaultTimeout,
	}
	if s.opts.Namespace == "" {
		s.opts.Namespace = "/"
	}
	if s.opts.Event == "" {
		s.opts.Event = DefaultEvent
	}
	if o.Timeout != "" {
		timeout, err := time.ParseDuration(o.Timeout)
		if err != nil {
			logger.Warn("Failed to parse timeout, using default", "inputTimeout", o.Timeout, "default", DefaultTimeout, "error", err)
		} else {
			s.timeout = timeout
		}
	}
	return s, nil
}

// Emit connects, sends the batch as one event and, when an ack event is
// configured, waits for the server to answer with it.
func (s *Sink) Emit(ctx context.Context, b *registry.Batch) error {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", s.opts.URL, "event", s.opts.Event)
	logger.Debug("Emit started")
	defer logger.Debug("Emit finished")

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	finish := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	opts.SetPath(s.path)
	if s.opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(s.baseURL, opts)
	client := manager.Socket(s.opts.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		client.Disconnect()
	}()

	client.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Connected, emitting batch", "namespace", s.opts.Namespace, "sid", client.Id(), "results", len(b.Results))
		client.Emit(s.opts.Event, b)
		if s.opts.AckEvent == "" {
			finish(opResult{})
		}
	})

	client.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = errors.Newf("connect_error: %v", errs[0])
			}
		}
		finish(opResult{err: errors.Wrap(err, "socketio connection failed")})
	})

	if s.opts.AckEvent != "" {
		client.On(types.EventName(s.opts.AckEvent), func(...any) {
			logger.Debug("Ack received", "ack_event", s.opts.AckEvent)
			finish(opResult{})
		})
	}

	client.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return errors.Newf("timed out after connecting while waiting for event '%s'", s.opts.AckEvent)
		}
		return errors.New("timed out while waiting for initial connection")
	case res := <-done:
		return res.err
	}
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink("socketio", &registry.RegisteredSink{
		NewOptions:  func() any { return new(Options) },
		OptionsType: reflect.TypeOf(Options{}),
		New:         New,
	})
}
