package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parameters is the structured form of the free-text generation
// parameters. Seed, Steps and CfgScale hold numbers when the input
// coerced cleanly and fall back to the raw string otherwise.
type Parameters struct {
	Prompt         string        `json:"prompt"`
	NegativePrompt string        `json:"negative_prompt,omitempty"`
	Resolution     string        `json:"resolution,omitempty"`
	Seed           interface{}   `json:"seed,omitempty"`
	Steps          interface{}   `json:"steps,omitempty"`
	CfgScale       interface{}   `json:"cfg_scale,omitempty"`
	Sampler        string        `json:"sampler,omitempty"`
	Model          string        `json:"model,omitempty"`
	CustomParams   OrderedParams `json:"custom_params"`
}

// OrderedParams is a string-to-string mapping that preserves insertion
// order across JSON round trips. Setting an existing key updates the
// value in place without moving it.
type OrderedParams []CustomParam

type CustomParam struct {
	Key   string
	Value string
}

// Set stores a key/value pair, last write wins.
func (p *OrderedParams) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, CustomParam{Key: key, Value: value})
}

// Get returns the value for key and whether it was present.
func (p OrderedParams) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// MarshalJSON emits a JSON object whose keys appear in insertion order.
func (p OrderedParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order as written.
func (p *OrderedParams) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("custom_params: expected object, got %v", tok)
	}
	out := OrderedParams{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("custom_params: non-string key %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}
