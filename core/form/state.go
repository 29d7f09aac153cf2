package form

import (
	"encoding/json"
	"html"
	"sort"

	"github.com/microcosm-cc/bluemonday"

	"github.com/trezcool/edupay/core"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	errUnknownField = "unknown field"
	errInvalidValue = "invalid value"
)

// Document references an attached file.
type Document struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// Value holds a field value; only the member matching the field type is used.
type Value struct {
	Text    string
	Checked bool
	Files   []Document
}

func Text(s string) Value          { return Value{Text: s} }
func Checked(b bool) Value         { return Value{Checked: b} }
func Files(docs ...Document) Value { return Value{Files: docs} }

func (v Value) clone() Value {
	if v.Files != nil {
		v.Files = append([]Document{}, v.Files...)
	}
	return v
}

// Values maps fields to their values.
type Values map[Field]Value

func (vs Values) Text(f Field) string       { return vs[f].Text }
func (vs Values) Checked(f Field) bool      { return vs[f].Checked }
func (vs Values) Files(f Field) []Document { return vs[f].Files }

func (vs Values) clone() Values {
	c := make(Values, len(vs))
	for f, v := range vs {
		c[f] = v.clone()
	}
	return c
}

// Payload returns the JSON friendly representation of the values of a form.
// Secret fields are left out unless withSecrets is set.
func (vs Values) Payload(kind Kind, withSecrets bool) map[string]interface{} {
	p := make(map[string]interface{}, len(kindFields[kind]))
	for _, f := range kindFields[kind] {
		def := fieldDefs[f]
		if def.secret && !withSecrets {
			continue
		}
		v := vs[f]
		switch def.typ {
		case flagField:
			p[string(f)] = v.Checked
		case filesField:
			docs := v.Files
			if docs == nil {
				docs = []Document{}
			}
			p[string(f)] = docs
		default:
			p[string(f)] = v.Text
		}
	}
	return p
}

// State holds the current values of one form.
type State struct {
	kind   Kind
	values Values
}

func NewState(kind Kind) *State {
	s := &State{kind: kind}
	s.Reset()
	return s
}

func (s *State) Kind() Kind { return s.kind }

// Reset puts every field back to its initial value.
func (s *State) Reset() {
	s.values = make(Values, len(kindFields[s.kind]))
	for _, f := range kindFields[s.kind] {
		s.values[f] = Value{Text: fieldDefs[f].initial}
	}
}

func (s *State) Get(f Field) Value { return s.values[f].clone() }

// Values returns a copy of the current values.
func (s *State) Values() Values { return s.values.clone() }

// Set changes one field. Fields outside the form and values outside a selection are rejected.
func (s *State) Set(f Field, v Value) error {
	if !s.kind.Has(f) {
		return core.NewValidationError(nil, core.FieldError{Field: string(f), Error: errUnknownField})
	}
	if !acceptsOption(f, v.Text) {
		return core.NewValidationError(nil, core.FieldError{Field: string(f), Error: errInvalidValue})
	}
	s.values[f] = v.clone()
	return nil
}

func (s *State) SetText(f Field, text string) error      { return s.Set(f, Text(text)) }
func (s *State) SetChecked(f Field, checked bool) error  { return s.Set(f, Checked(checked)) }
func (s *State) SetFiles(f Field, docs ...Document) error { return s.Set(f, Files(docs...)) }

// Apply sets all given values, or none of them if one is rejected.
func (s *State) Apply(vs Values) error {
	var fldErrs []core.FieldError
	for f, v := range vs {
		if !s.kind.Has(f) {
			fldErrs = append(fldErrs, core.FieldError{Field: string(f), Error: errUnknownField})
		} else if !acceptsOption(f, v.Text) {
			fldErrs = append(fldErrs, core.FieldError{Field: string(f), Error: errInvalidValue})
		}
	}
	if len(fldErrs) > 0 {
		return newSortedValidationError(fldErrs)
	}
	for f, v := range vs {
		s.values[f] = v.clone()
	}
	return nil
}

func acceptsOption(f Field, text string) bool {
	opts := fieldDefs[f].options
	if len(opts) == 0 || text == "" {
		return true
	}
	for _, o := range opts {
		if o == text {
			return true
		}
	}
	return false
}

// ParseValues decodes raw client input into typed values for kind.
// Every offending field is reported at once.
func ParseValues(kind Kind, raw map[string]json.RawMessage) (Values, error) {
	vs := make(Values, len(raw))
	var fldErrs []core.FieldError

	for name, data := range raw {
		f := Field(name)
		if !kind.Has(f) {
			fldErrs = append(fldErrs, core.FieldError{Field: name, Error: errUnknownField})
			continue
		}
		v, ok := parseValue(fieldDefs[f], data)
		if !ok || !acceptsOption(f, v.Text) {
			fldErrs = append(fldErrs, core.FieldError{Field: name, Error: errInvalidValue})
			continue
		}
		vs[f] = v
	}

	if len(fldErrs) > 0 {
		return nil, newSortedValidationError(fldErrs)
	}
	return vs, nil
}

func parseValue(def fieldDef, data json.RawMessage) (Value, bool) {
	switch def.typ {
	case flagField:
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return Value{}, false
		}
		return Checked(b), true
	case filesField:
		var docs []Document
		if err := json.Unmarshal(data, &docs); err != nil {
			return Value{}, false
		}
		for _, d := range docs {
			if d.Name == "" || d.Size < 0 {
				return Value{}, false
			}
		}
		return Files(docs...), true
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Value{}, false
		}
		if def.freeText {
			s = html.UnescapeString(strictPolicy.Sanitize(s))
		}
		return Text(s), true
	}
}

func newSortedValidationError(fldErrs []core.FieldError) error {
	sort.Slice(fldErrs, func(i, j int) bool { return fldErrs[i].Field < fldErrs[j].Field })
	return core.NewValidationError(nil, fldErrs...)
}
