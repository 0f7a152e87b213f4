package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerSet maps question text to the chosen answer value while remembering
// insertion order. Key order survives a JSON round trip, which keeps the
// store artifact stable and exports deterministic.
//
// The zero value is ready to use.
type AnswerSet struct {
	keys   []string
	values map[string]string
}

// Set records an answer. Re-answering a question overwrites the value but
// keeps its original position.
func (a *AnswerSet) Set(question, answer string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[question]; !ok {
		a.keys = append(a.keys, question)
	}
	a.values[question] = answer
}

// Get returns the answer for a question and whether one was recorded.
func (a *AnswerSet) Get(question string) (string, bool) {
	v, ok := a.values[question]
	return v, ok
}

// Keys returns the question texts in insertion order.
func (a *AnswerSet) Keys() []string {
	return a.keys
}

func (a *AnswerSet) Len() int {
	return len(a.keys)
}

func (a AnswerSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(a.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object token by token so that key order is
// preserved instead of falling into an unordered map.
func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("responses must be a JSON object")
	}

	a.keys = nil
	a.values = make(map[string]string)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("response key must be a string")
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("response for %q must be a string: %w", key, err)
		}
		a.Set(key, val)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
