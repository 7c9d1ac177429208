package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vk/stringalong/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry checks that every registered options type can be decoded
// from an HCL body: it must be a struct, NewOptions must return a pointer to
// it, and each hcl-tagged attribute must map onto a cty type.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.SinkNames() {
		s := r.sinks[name]
		if s.New == nil {
			errs = append(errs, fmt.Sprintf("sink '%s': no constructor", name))
			continue
		}
		if s.OptionsType == nil {
			if s.NewOptions != nil {
				errs = append(errs, fmt.Sprintf("sink '%s': NewOptions set but OptionsType is missing", name))
			}
			continue
		}
		if s.OptionsType.Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("sink '%s': options type %s is not a struct", name, s.OptionsType))
			continue
		}
		if s.NewOptions == nil {
			errs = append(errs, fmt.Sprintf("sink '%s': OptionsType set but NewOptions is missing", name))
			continue
		}
		if got := reflect.TypeOf(s.NewOptions()); got != reflect.PointerTo(s.OptionsType) {
			errs = append(errs, fmt.Sprintf("sink '%s': NewOptions returns %s, want *%s", name, got, s.OptionsType))
		}

		for i := 0; i < s.OptionsType.NumField(); i++ {
			field := s.OptionsType.Field(i)
			if !field.IsExported() {
				continue
			}
			tag := field.Tag.Get("hcl")
			parts := strings.Split(tag, ",")
			if parts[0] == "" {
				errs = append(errs, fmt.Sprintf("sink '%s': field %s has no hcl tag", name, field.Name))
				continue
			}
			if len(parts) > 1 && parts[1] != "optional" && parts[1] != "attr" {
				continue
			}
			if _, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface()); err != nil {
				errs = append(errs, fmt.Sprintf("sink '%s', option '%s': unsupported Go type %s: %v", name, parts[0], field.Type, err))
			}
		}
		logger.Debug("Sink validated.", "sink", name)
	}

	if len(errs) > 0 {
		return errors.Newf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateSinks reports sink names that have no registered implementation.
func (r *Registry) ValidateSinks(names []string) error {
	var missing []string
	for _, name := range names {
		if _, ok := r.sinks[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.WithHintf(
		errors.Newf("unknown sink type(s): %s", strings.Join(missing, ", ")),
		"available sinks: %s", strings.Join(r.SinkNames(), ", "),
	)
}
