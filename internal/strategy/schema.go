package strategy

import (
	"fmt"
	"sort"

	"docstage/internal/domain"
)

// ParamKind describes how a parameter is edited and serialized.
type ParamKind int

const (
	ParamInt ParamKind = iota
	ParamFloat
	ParamBool
	ParamString
	ParamChoice
	// ParamList is edited as a comma separated string and sent as a list.
	ParamList
	ParamParagraphSeparator
	ParamSentenceSeparators
)

func (k ParamKind) String() string {
	switch k {
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	case ParamBool:
		return "bool"
	case ParamString:
		return "string"
	case ParamChoice:
		return "choice"
	case ParamList:
		return "list"
	case ParamParagraphSeparator:
		return "paragraph separator"
	case ParamSentenceSeparators:
		return "sentence separators"
	}
	return "unknown"
}

// ParamSpec declares one parameter of a method. Min and Max are only
// meaningful when HasRange is set; they drive clamping, not validation.
type ParamSpec struct {
	Name     string
	Kind     ParamKind
	Default  any
	Min      float64
	Max      float64
	HasRange bool
	Choices  []string
	Help     string
}

// Schema is the parameter set of one method.
type Schema struct {
	Stage  Stage
	Method string
	Params []ParamSpec
}

// Param looks a parameter up by name.
func (s Schema) Param(name string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

type entry struct {
	schema Schema
	make   func() Variant
}

var registry = map[Stage]map[string]entry{}

// methodOrder keeps Methods deterministic and in presentation order.
var methodOrder = map[Stage][]string{}

func register(stage Stage, method string, params []ParamSpec, mk func() Variant) {
	if registry[stage] == nil {
		registry[stage] = map[string]entry{}
	}
	registry[stage][method] = entry{
		schema: Schema{Stage: stage, Method: method, Params: params},
		make:   mk,
	}
	methodOrder[stage] = append(methodOrder[stage], method)
}

func lookup(stage Stage, method string) (entry, error) {
	e, ok := registry[stage][method]
	if !ok {
		return entry{}, fmt.Errorf("%w: %s method %q", domain.ErrUnsupportedMethod, stage, method)
	}
	return e, nil
}

// Methods returns the methods of a stage in presentation order.
func Methods(stage Stage) []string {
	out := make([]string, len(methodOrder[stage]))
	copy(out, methodOrder[stage])
	return out
}

// SchemaFor returns the parameter schema of a method.
func SchemaFor(stage Stage, method string) (Schema, error) {
	e, err := lookup(stage, method)
	if err != nil {
		return Schema{}, err
	}
	return e.schema, nil
}

// SharedParams returns the parameter names two methods of a stage have in common.
func SharedParams(stage Stage, a, b string) []string {
	ea, errA := lookup(stage, a)
	eb, errB := lookup(stage, b)
	if errA != nil || errB != nil {
		return nil
	}
	var shared []string
	for _, p := range ea.schema.Params {
		if _, ok := eb.schema.Param(p.Name); ok {
			shared = append(shared, p.Name)
		}
	}
	sort.Strings(shared)
	return shared
}

func intParam(name string, def int, min, max float64, help string) ParamSpec {
	return ParamSpec{Name: name, Kind: ParamInt, Default: def, Min: min, Max: max, HasRange: true, Help: help}
}

func floatParam(name string, def, min, max float64, help string) ParamSpec {
	return ParamSpec{Name: name, Kind: ParamFloat, Default: def, Min: min, Max: max, HasRange: true, Help: help}
}

func boolParam(name string, def bool, help string) ParamSpec {
	return ParamSpec{Name: name, Kind: ParamBool, Default: def, Help: help}
}

func stringParam(name, def, help string) ParamSpec {
	return ParamSpec{Name: name, Kind: ParamString, Default: def, Help: help}
}

func choiceParam(name, def string, choices []string, help string) ParamSpec {
	return ParamSpec{Name: name, Kind: ParamChoice, Default: def, Choices: choices, Help: help}
}
