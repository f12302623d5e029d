package strategy

import "strings"

// CustomPreset selects the free-text value of a separator.
const CustomPreset = "custom"

// PresetOption is one entry of a separator preset catalogue.
type PresetOption struct {
	Label string
	Value string
}

const (
	DefaultParagraphPreset = "\n\n"
	DefaultSentencePreset  = "。|！|？|\n|.|!|?| "
)

var ParagraphPresets = []PresetOption{
	{Label: "blank line", Value: "\n\n"},
	{Label: "line break", Value: "\n"},
	{Label: "blank line (CRLF)", Value: "\r\n\r\n"},
	{Label: "custom", Value: CustomPreset},
}

// SentencePresets are lists of alternatives separated by '|'.
var SentencePresets = []PresetOption{
	{Label: "CJK and Latin punctuation, line breaks, spaces", Value: DefaultSentencePreset},
	{Label: "CJK and Latin punctuation", Value: "。|！|？|.|!|?"},
	{Label: "Latin punctuation", Value: ".|!|?"},
	{Label: "line breaks", Value: "\n"},
	{Label: "custom", Value: CustomPreset},
}

// ParagraphSeparator is a preset selector plus a custom value. The effective
// separator is used verbatim.
type ParagraphSeparator struct {
	Preset string `mapstructure:"preset" json:"preset" yaml:"preset"`
	Custom string `mapstructure:"custom" json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Value returns the effective separator.
func (s ParagraphSeparator) Value() string {
	if s.Preset == CustomPreset {
		return s.Custom
	}
	return s.Preset
}

// SentenceSeparators is a preset selector plus a custom value. The effective
// value is always a list of alternatives split on '|'.
type SentenceSeparators struct {
	Preset string `mapstructure:"preset" json:"preset" yaml:"preset"`
	Custom string `mapstructure:"custom" json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Values returns the effective separator alternatives.
func (s SentenceSeparators) Values() []string {
	raw := s.Preset
	if s.Preset == CustomPreset {
		raw = s.Custom
	}
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "|")
}

func separatorMap(preset, custom string) map[string]any {
	return map[string]any{"preset": preset, "custom": custom}
}

// shorthandSeparator turns "value" into a preset selection when value matches a
// known preset, else into a custom selection.
func shorthandSeparator(value string, presets []PresetOption) map[string]any {
	for _, p := range presets {
		if p.Value == value && p.Value != CustomPreset {
			return separatorMap(value, "")
		}
	}
	return separatorMap(CustomPreset, value)
}
