package cli

import (
	"fmt"
	"strings"

	"docstage/internal/strategy"
)

// parseParams turns repeated --param name=value flags into assignments.
func parseParams(flags []string) (map[string]string, error) {
	out := make(map[string]string, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", f)
		}
		out[name] = unescape(value)
	}
	return out, nil
}

// unescape lets separators be typed on a command line: \n, \r and \t.
func unescape(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t").Replace(s)
}

// declared keeps the assignments the chunking method declares.
func declared(method string, params map[string]string) map[string]string {
	schema, err := strategy.SchemaFor(strategy.StageChunk, method)
	if err != nil {
		return params
	}
	out := map[string]string{}
	for k, v := range params {
		name, _, _ := strings.Cut(k, ".")
		if _, ok := schema.Param(name); ok {
			out[k] = v
		}
	}
	return out
}
