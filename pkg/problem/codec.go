package problem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/jx"
)

// Encode writes p in canonical problem+json form.
func Encode(p Problem) ([]byte, error) {
	var e jx.Encoder
	e.ObjStart()
	writeStr(&e, FieldType, p.Type())
	if p.title != "" {
		writeStr(&e, FieldTitle, p.title)
	}
	if p.status != 0 {
		e.FieldStart(FieldStatus)
		e.Int(p.status)
	}
	if p.detail != "" {
		writeStr(&e, FieldDetail, p.detail)
	}
	if p.instance != "" {
		writeStr(&e, FieldInstance, p.instance)
	}
	for _, key := range p.ExtensionKeys() {
		raw, err := encodeValue(p.extensions[key])
		if err != nil {
			return nil, fmt.Errorf("%w: extension %q: %v", ErrMappingFailure, key, err)
		}
		e.FieldStart(validUTF8(key))
		e.Raw(raw)
	}
	e.ObjEnd()

	return e.Bytes(), nil
}

// validUTF8 replaces invalid byte sequences with U+FFFD, matching what
// encoding/json does for extension values.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func writeStr(e *jx.Encoder, field, value string) {
	e.FieldStart(field)
	e.Str(validUTF8(value))
}

// Decode parses a problem+json document.
func Decode(data []byte) (Problem, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return Problem{}, fmt.Errorf("%w: document must be a JSON object", ErrMalformedPayload)
	}

	var (
		opts []Option
		ext  map[string]any
	)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		name := string(key)
		switch name {
		case FieldType, FieldTitle, FieldDetail, FieldInstance:
			s, ok, err := decodeOptionalStr(d)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if ok {
				opts = append(opts, stringOption(name, s))
			}
		case FieldStatus:
			if d.Next() == jx.Null {
				return d.Null()
			}
			if d.Next() != jx.Number {
				return fmt.Errorf("status: expected number, got %v", d.Next())
			}
			status, err := d.Int()
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			opts = append(opts, WithStatus(status))
		default:
			raw, err := d.Raw()
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			v, err := decodeValue(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if ext == nil {
				ext = make(map[string]any)
			}
			ext[name] = v
		}
		return nil
	})
	if err != nil {
		return Problem{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if d.Next() != jx.Invalid {
		return Problem{}, fmt.Errorf("%w: unexpected data after document", ErrMalformedPayload)
	}

	if len(ext) > 0 {
		opts = append(opts, WithExtensions(ext))
	}
	p, err := New(opts...)
	if err != nil {
		return Problem{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return p, nil
}

// MarshalJSON implements json.Marshaler.
func (p Problem) MarshalJSON() ([]byte, error) {
	return Encode(p)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Problem) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func stringOption(field, value string) Option {
	switch field {
	case FieldType:
		return WithType(value)
	case FieldTitle:
		return WithTitle(value)
	case FieldDetail:
		return WithDetail(value)
	default:
		return WithInstance(value)
	}
}

func decodeOptionalStr(d *jx.Decoder) (string, bool, error) {
	switch d.Next() {
	case jx.Null:
		return "", false, d.Null()
	case jx.String:
		s, err := d.Str()
		return s, err == nil, err
	default:
		return "", false, fmt.Errorf("expected string, got %v", d.Next())
	}
}

// encodeValue renders an extension value compactly, without HTML escaping.
func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func decodeValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
