package override

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"autoplay/internal/player"
)

// AutoKeyword is the configuration spelling of an inherited option.
const AutoKeyword = "auto"

// Option is either a configured literal or Inherited, meaning "use the saved
// session value". The zero Option is Inherited.
type Option[T any] struct {
	value      T
	configured bool
}

// Configured returns an Option holding v.
func Configured[T any](v T) Option[T] {
	return Option[T]{value: v, configured: true}
}

// Inherited returns an Option that defers to saved state.
func Inherited[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the configured value and whether there is one.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.configured
}

// IsConfigured reports whether o holds a literal.
func (o Option[T]) IsConfigured() bool {
	return o.configured
}

// String renders o the way it is written in configuration.
func (o Option[T]) String() string {
	if !o.configured {
		return AutoKeyword
	}
	switch v := any(o.value).(type) {
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// UnmarshalText parses "auto" or a literal. Lists are comma separated. It
// lets caarlos0/env decode options from environment variables.
func (o *Option[T]) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if strings.EqualFold(s, AutoKeyword) {
		*o = Inherited[T]()
		return nil
	}
	v, err := parseLiteral[T](s)
	if err != nil {
		return err
	}
	*o = Configured(v)
	return nil
}

// UnmarshalYAML accepts the scalar auto, a scalar literal, or a sequence for
// list options.
func (o *Option[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && strings.EqualFold(strings.TrimSpace(node.Value), AutoKeyword) {
		*o = Inherited[T]()
		return nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	if err := validate(v); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*o = Configured(v)
	return nil
}

// MarshalYAML writes auto or the literal.
func (o Option[T]) MarshalYAML() (interface{}, error) {
	if !o.configured {
		return AutoKeyword, nil
	}
	return o.value, nil
}

// Percent is an integer constrained to [0, 100].
type Percent int

// NonNegative is an integer constrained to >= 0.
type NonNegative int

func parseLiteral[T any](s string) (T, error) {
	var v T
	switch p := any(&v).(type) {
	case *bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return v, fmt.Errorf("invalid boolean %q (want true, false or auto)", s)
		}
		*p = b
	case *Percent:
		n, err := strconv.Atoi(s)
		if err != nil {
			return v, fmt.Errorf("invalid integer %q", s)
		}
		*p = Percent(n)
	case *NonNegative:
		n, err := strconv.Atoi(s)
		if err != nil {
			return v, fmt.Errorf("invalid integer %q", s)
		}
		*p = NonNegative(n)
	case *player.PlaybackState:
		*p = player.PlaybackState(strings.ToLower(s))
	case *[]string:
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if out == nil {
			out = []string{}
		}
		*p = out
	default:
		return v, fmt.Errorf("unsupported option type %T", v)
	}
	return v, validate(v)
}

func validate[T any](v T) error {
	switch x := any(v).(type) {
	case Percent:
		if x < 0 || x > 100 {
			return fmt.Errorf("value %d out of range [0, 100]", x)
		}
	case NonNegative:
		if x < 0 {
			return fmt.Errorf("value %d must not be negative", x)
		}
	case player.PlaybackState:
		if !x.Valid() {
			return fmt.Errorf("invalid playback state %q (want stopped, playing or paused)", string(x))
		}
	}
	return nil
}
