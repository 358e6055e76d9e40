// Package params converts free-text generation parameters to and from
// their structured form.
package params

import (
	"fmt"
	"strconv"
	"strings"

	"gengallery/internal/model"
)

// keyMapping maps user-supplied keys (Chinese label or English alias,
// lower-cased) to canonical field names.
var keyMapping = map[string]string{
	"提示词":             "prompt",
	"prompt":          "prompt",
	"负向提示词":           "negative_prompt",
	"negative_prompt": "negative_prompt",
	"negative":        "negative_prompt",
	"分辨率":             "resolution",
	"resolution":      "resolution",
	"size":            "resolution",
	"随机种子":            "seed",
	"seed":            "seed",
	"采样步数":            "steps",
	"steps":           "steps",
	"cfg":             "cfg_scale",
	"cfg_scale":       "cfg_scale",
	"cfg scale":       "cfg_scale",
	"采样器":             "sampler",
	"sampler":         "sampler",
	"模型":              "model",
	"model":           "model",
}

// Parse splits free-form multi-line text into structured parameters.
// Lines of the form "key: value" are mapped through the synonym table;
// unrecognized keys land in custom_params in insertion order. Lines
// without a colon, and lines starting with "http" (URLs pasted into
// the prompt), accumulate onto the prompt field newline-joined.
// Duplicate keys follow last-write-wins.
func Parse(text string) model.Parameters {
	parsed := model.Parameters{CustomParams: model.OrderedParams{}}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.Contains(line, ":") && !strings.HasPrefix(line, "http") {
			key, value, _ := strings.Cut(line, ":")
			key = strings.ToLower(strings.TrimSpace(key))
			value = strings.TrimSpace(value)

			if canonical, ok := keyMapping[key]; ok {
				assign(&parsed, canonical, value)
			} else {
				parsed.CustomParams.Set(key, value)
			}
			continue
		}

		if parsed.Prompt != "" {
			parsed.Prompt += "\n" + line
		} else {
			parsed.Prompt = line
		}
	}

	return parsed
}

// assign stores value under its canonical field, coercing the numeric
// fields and keeping the raw string when coercion fails.
func assign(p *model.Parameters, field, value string) {
	switch field {
	case "prompt":
		p.Prompt = value
	case "negative_prompt":
		p.NegativePrompt = value
	case "resolution":
		p.Resolution = value
	case "seed":
		p.Seed = coerceInt(value)
	case "steps":
		p.Steps = coerceInt(value)
	case "cfg_scale":
		p.CfgScale = coerceFloat(value)
	case "sampler":
		p.Sampler = value
	case "model":
		p.Model = value
	}
}

func coerceInt(value string) interface{} {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}

func coerceFloat(value string) interface{} {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

var formatOrder = []struct {
	field string
	label string
}{
	{"negative_prompt", "负向提示词"},
	{"resolution", "分辨率"},
	{"seed", "随机种子"},
	{"steps", "采样步数"},
	{"cfg_scale", "CFG Scale"},
	{"sampler", "采样器"},
	{"model", "模型"},
}

// Format renders structured parameters back to text. Standard fields
// come out in a fixed canonical order, prompt first, then custom
// params in their stored order. Parse(Format(p)) reconstructs p up to
// prompt newline normalization.
func Format(p model.Parameters) string {
	var lines []string

	if p.Prompt != "" {
		lines = append(lines, "提示词: "+p.Prompt)
	}

	for _, f := range formatOrder {
		if v := fieldValue(p, f.field); v != "" {
			lines = append(lines, f.label+": "+v)
		}
	}

	for _, kv := range p.CustomParams {
		lines = append(lines, kv.Key+": "+kv.Value)
	}

	return strings.Join(lines, "\n")
}

func fieldValue(p model.Parameters, field string) string {
	switch field {
	case "negative_prompt":
		return p.NegativePrompt
	case "resolution":
		return p.Resolution
	case "seed":
		return stringify(p.Seed)
	case "steps":
		return stringify(p.Steps)
	case "cfg_scale":
		return stringify(p.CfgScale)
	case "sampler":
		return p.Sampler
	case "model":
		return p.Model
	}
	return ""
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
