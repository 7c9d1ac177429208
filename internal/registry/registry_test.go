package registry

import (
	"context"
	"io"
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goodOptions struct {
	URL     string `hcl:"url"`
	Retries int    `hcl:"retries,optional"`
}

type untaggedOptions struct {
	URL string
}

type chanOptions struct {
	Ch chan int `hcl:"ch,optional"`
}

type nopSink struct{}

func (nopSink) Emit(context.Context, *Batch) error { return nil }

func newNop(context.Context, io.Writer, any) (Sink, error) { return nopSink{}, nil }

func TestRegisterSink(t *testing.T) {
	r := New()
	r.RegisterSink("b", &RegisteredSink{New: newNop})
	r.RegisterSink("a", &RegisteredSink{New: newNop})

	assert.Equal(t, []string{"a", "b"}, r.SinkNames())
	_, ok := r.Sink("a")
	assert.True(t, ok)
	_, ok = r.Sink("c")
	assert.False(t, ok)

	assert.Panics(t, func() { r.RegisterSink("a", &RegisteredSink{New: newNop}) })
}

func TestValidateRegistry(t *testing.T) {
	testCases := []struct {
		name    string
		sink    *RegisteredSink
		wantErr string
	}{
		{
			name: "valid",
			sink: &RegisteredSink{
				NewOptions:  func() any { return new(goodOptions) },
				OptionsType: reflect.TypeOf(goodOptions{}),
				New:         newNop,
			},
		},
		{
			name: "no options",
			sink: &RegisteredSink{New: newNop},
		},
		{
			name:    "missing constructor",
			sink:    &RegisteredSink{},
			wantErr: "no constructor",
		},
		{
			name: "wrong pointer type",
			sink: &RegisteredSink{
				NewOptions:  func() any { return new(untaggedOptions) },
				OptionsType: reflect.TypeOf(goodOptions{}),
				New:         newNop,
			},
			wantErr: "NewOptions returns",
		},
		{
			name: "untagged field",
			sink: &RegisteredSink{
				NewOptions:  func() any { return new(untaggedOptions) },
				OptionsType: reflect.TypeOf(untaggedOptions{}),
				New:         newNop,
			},
			wantErr: "has no hcl tag",
		},
		{
			name: "unsupported field type",
			sink: &RegisteredSink{
				NewOptions:  func() any { return new(chanOptions) },
				OptionsType: reflect.TypeOf(chanOptions{}),
				New:         newNop,
			},
			wantErr: "unsupported Go type",
		},
		{
			name: "non-struct options",
			sink: &RegisteredSink{
				NewOptions:  func() any { return new(string) },
				OptionsType: reflect.TypeOf(""),
				New:         newNop,
			},
			wantErr: "is not a struct",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New()
			r.RegisterSink("test", tc.sink)
			err := r.ValidateRegistry(context.Background())
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateSinks(t *testing.T) {
	r := New()
	r.RegisterSink("print", &RegisteredSink{New: newNop})

	require.NoError(t, r.ValidateSinks([]string{"print"}))
	require.NoError(t, r.ValidateSinks(nil))

	err := r.ValidateSinks([]string{"print", "kafka", "smtp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka, smtp")
	assert.Contains(t, errors.FlattenHints(err), "available sinks: print")
}
