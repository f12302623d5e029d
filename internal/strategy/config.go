package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Config is the active strategy of a stage: exactly one method and its
// parameter values. It is an immutable value; every edit returns a new Config.
type Config struct {
	stage  Stage
	method string
	values map[string]any
}

// New builds the default configuration of a method.
func New(stage Stage, method string) (Config, error) {
	e, err := lookup(stage, method)
	if err != nil {
		return Config{}, err
	}
	values, err := normalize(e, defaults(e.schema))
	if err != nil {
		return Config{}, err
	}
	return Config{stage: stage, method: method, values: values}, nil
}

// MustNew is New for methods known at compile time.
func MustNew(stage Stage, method string) Config {
	c, err := New(stage, method)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Config) Stage() Stage   { return c.stage }
func (c Config) Method() string { return c.method }
func (c Config) IsZero() bool   { return c.method == "" }

// Schema returns the schema of the active method.
func (c Config) Schema() Schema {
	e, err := lookup(c.stage, c.method)
	if err != nil {
		return Schema{Stage: c.stage, Method: c.method}
	}
	return e.schema
}

// Variant decodes the values into the method's typed record.
func (c Config) Variant() (Variant, error) {
	e, err := lookup(c.stage, c.method)
	if err != nil {
		return nil, err
	}
	v := e.make()
	if err := decode(c.values, v); err != nil {
		return nil, fmt.Errorf("decode %s parameters: %w", c.method, err)
	}
	return v, nil
}

// Values returns a copy of the parameter values keyed by name.
func (c Config) Values() map[string]any {
	return copyValues(c.values)
}

// Switch activates another method of the same stage. Parameters whose name
// exists in both methods keep their value; the rest take the new defaults.
func (c Config) Switch(method string) (Config, error) {
	if method == c.method {
		return c, nil
	}
	next, err := New(c.stage, method)
	if err != nil {
		return c, err
	}
	if c.IsZero() {
		return next, nil
	}
	for name := range next.values {
		if v, ok := c.values[name]; ok {
			next.values[name] = copyValue(v)
		}
	}
	e, _ := lookup(next.stage, next.method)
	values, err := normalize(e, next.values)
	if err != nil {
		return c, err
	}
	next.values = values
	return next, nil
}

// Set applies string assignments, converting them to the parameter types.
// Separator parameters accept "name=value" (a preset value or a custom string)
// as well as "name.preset=..." and "name.custom=...".
func (c Config) Set(assignments map[string]string) (Config, error) {
	e, err := lookup(c.stage, c.method)
	if err != nil {
		return c, err
	}
	values := copyValues(c.values)

	keys := make([]string, 0, len(assignments))
	for k := range assignments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := assignments[key]
		name, part, dotted := strings.Cut(key, ".")
		spec, ok := e.schema.Param(name)
		if !ok {
			return c, fmt.Errorf("unknown parameter %q for %s method %q", name, c.stage, c.method)
		}
		switch spec.Kind {
		case ParamParagraphSeparator, ParamSentenceSeparators:
			sep, _ := values[name].(map[string]any)
			sep = copyMap(sep)
			switch {
			case !dotted:
				presets := ParagraphPresets
				if spec.Kind == ParamSentenceSeparators {
					presets = SentencePresets
				}
				sep = shorthandSeparator(raw, presets)
			case part == "preset" || part == "custom":
				sep[part] = raw
			default:
				return c, fmt.Errorf("parameter %q has no field %q (want preset or custom)", name, part)
			}
			values[name] = sep
		default:
			if dotted {
				return c, fmt.Errorf("parameter %q has no field %q", name, part)
			}
			values[name] = raw
		}
	}

	normalized, err := normalize(e, values)
	if err != nil {
		return c, err
	}
	return Config{stage: c.stage, method: c.method, values: normalized}, nil
}

// Clamp returns a copy with every ranged numeric parameter inside its range.
func (c Config) Clamp() Config {
	e, err := lookup(c.stage, c.method)
	if err != nil {
		return c
	}
	values := copyValues(c.values)
	for _, p := range e.schema.Params {
		if !p.HasRange {
			continue
		}
		switch v := values[p.Name].(type) {
		case int:
			values[p.Name] = int(clamp(float64(v), p.Min, p.Max))
		case float64:
			values[p.Name] = clamp(v, p.Min, p.Max)
		}
	}
	return Config{stage: c.stage, method: c.method, values: values}
}

// Wire returns the active parameters as sent to the service: separators are
// resolved to their effective values and list parameters are split.
func (c Config) Wire() map[string]any {
	e, err := lookup(c.stage, c.method)
	if err != nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(e.schema.Params))
	for _, p := range e.schema.Params {
		v := c.values[p.Name]
		switch p.Kind {
		case ParamParagraphSeparator:
			var sep ParagraphSeparator
			_ = decode(v, &sep)
			out[p.Name] = sep.Value()
		case ParamSentenceSeparators:
			var sep SentenceSeparators
			_ = decode(v, &sep)
			values := sep.Values()
			if values == nil {
				values = []string{}
			}
			out[p.Name] = values
		case ParamList:
			out[p.Name] = splitList(fmt.Sprint(v))
		default:
			out[p.Name] = v
		}
	}
	return out
}

func (c Config) String() string {
	if c.IsZero() {
		return string(c.stage) + ":<none>"
	}
	return string(c.stage) + ":" + c.method
}

// normalize round-trips values through the typed record so every value has
// the canonical Go type of its parameter.
func normalize(e entry, values map[string]any) (map[string]any, error) {
	v := e.make()
	if err := decode(values, v); err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", e.schema.Method, err)
	}
	out := map[string]any{}
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(input any, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func defaults(s Schema) map[string]any {
	out := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		switch d := p.Default.(type) {
		case ParagraphSeparator:
			out[p.Name] = separatorMap(d.Preset, d.Custom)
		case SentenceSeparators:
			out[p.Name] = separatorMap(d.Preset, d.Custom)
		default:
			out[p.Name] = d
		}
	}
	return out
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func copyValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		return copyMap(m)
	}
	return v
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
