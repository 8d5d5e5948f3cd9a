package filter

import "github.com/pkordes/trip-browser/internal/domain"

// Field names a raw filter input. Values match the query parameter names.
type Field string

const (
	FieldTitle     Field = domain.ParamTitleFilter
	FieldMinPrice  Field = domain.ParamMinPrice
	FieldMaxPrice  Field = domain.ParamMaxPrice
	FieldMinRating Field = domain.ParamMinRating
	FieldMaxRating Field = domain.ParamMaxRating
)

// Fields lists the text inputs of the filter panel.
var Fields = []Field{FieldTitle, FieldMinPrice, FieldMaxPrice, FieldMinRating, FieldMaxRating}

// ParseField reports whether s names a filter input.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Form holds the raw, unvalidated contents of the filter inputs and the
// tag entry buffer. The zero value is an empty form.
type Form struct {
	raw  map[Field]string
	Tags TagBuffer
}

// Set stores raw as the current text of field.
func (f *Form) Set(field Field, raw string) {
	if f.raw == nil {
		f.raw = make(map[Field]string)
	}
	f.raw[field] = raw
}

// Get returns the current text of field.
func (f *Form) Get(field Field) string {
	return f.raw[field]
}

// Blank empties field. Used after the input was rejected.
func (f *Form) Blank(field Field) {
	delete(f.raw, field)
}

// Reset empties every input and the tag buffer.
func (f *Form) Reset() {
	f.raw = nil
	f.Tags.Reset()
}

// Fill sets the inputs from a filter spec, e.g. after hydrating from the location.
func (f *Form) Fill(spec domain.FilterSpec) {
	f.Reset()
	params := spec.Params()
	for _, field := range Fields {
		if v, ok := params[string(field)]; ok {
			f.Set(field, v)
		}
	}
}
