package problem

import (
	"encoding/json"
	"net/http"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_FieldOrderAndOmission(t *testing.T) {
	tests := []struct {
		name string
		p    Problem
		want string
	}{
		{
			name: "generic internal error",
			p:    MustNew(WithTitle("Internal Server Error"), WithStatus(http.StatusInternalServerError)),
			want: `{"type":"about:blank","title":"Internal Server Error","status":500}`,
		},
		{
			name: "all members with sorted extensions",
			p: MustNew(
				WithExtension("zeta", true),
				WithInstance("/orders/42"),
				WithDetail("order 42 is already paid"),
				WithStatus(http.StatusConflict),
				WithTitle("Order Conflict"),
				WithType("https://errors.example.com/order-conflict"),
				WithExtension("alpha", map[string]any{"b": 2, "a": "<x>"}),
			),
			want: `{"type":"https://errors.example.com/order-conflict","title":"Order Conflict","status":409,` +
				`"detail":"order 42 is already paid","instance":"/orders/42","alpha":{"a":"<x>","b":2},"zeta":true}`,
		},
		{
			name: "zero value",
			p:    Problem{},
			want: `{"type":"about:blank"}`,
		},
		{
			name: "null extension is kept",
			p:    MustNew(WithExtension("hint", nil)),
			want: `{"type":"about:blank","hint":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestEncode_UnencodableExtension(t *testing.T) {
	p := MustNew(WithStatus(500), WithExtension("ch", make(chan int)))

	_, err := Encode(p)

	assert.ErrorIs(t, err, ErrMappingFailure)
}

func TestDecode(t *testing.T) {
	data := []byte(`{
		"title": "Validation Failure",
		"status": 400,
		"detail": "email: invalid",
		"violations": [{"field": "email", "message": "invalid"}],
		"retryAfter": 1.50
	}`)

	p, err := Decode(data)

	require.NoError(t, err)
	assert.Equal(t, DefaultType, p.Type())
	assert.Equal(t, "Validation Failure", p.Title())
	assert.Equal(t, http.StatusBadRequest, p.Status())
	assert.Equal(t, "email: invalid", p.Detail())
	retry, ok := p.Extension("retryAfter")
	require.True(t, ok)
	assert.Equal(t, json.Number("1.50"), retry)
	assert.Equal(t, []string{"retryAfter", "violations"}, p.ExtensionKeys())
}

func TestDecode_NullMembersAreAbsent(t *testing.T) {
	p, err := Decode([]byte(`{"type":null,"title":null,"status":null,"detail":null,"instance":null}`))

	require.NoError(t, err)
	assert.True(t, p.Equal(Problem{}))
}

func TestDecode_EmptyURIMembersAreAbsent(t *testing.T) {
	p, err := Decode([]byte(`{"type":"","instance":"","status":404}`))

	require.NoError(t, err)
	assert.Equal(t, DefaultType, p.Type())
	assert.Empty(t, p.Instance())

	data, err := Encode(p)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"about:blank","status":404}`, string(data))
}

func TestEncode_ReplacesInvalidUTF8(t *testing.T) {
	p := MustNew(
		WithTitle("bad\xffutf8"),
		WithDetail("no route for /orders/\xff"),
		WithExtension("k\xff", "v\xfe"),
	)

	data, err := Encode(p)
	require.NoError(t, err)
	require.True(t, utf8.Valid(data), "encoded: %q", data)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "bad\uFFFDutf8", decoded.Title())
	assert.Equal(t, "no route for /orders/\uFFFD", decoded.Detail())
	v, ok := decoded.Extension("k\uFFFD")
	require.True(t, ok)
	assert.Equal(t, "v\uFFFD", v)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty input", data: ``},
		{name: "not json", data: `type=about:blank`},
		{name: "array", data: `[{"status":400}]`},
		{name: "string", data: `"problem"`},
		{name: "truncated", data: `{"status":400`},
		{name: "trailing data", data: `{"status":400} {}`},
		{name: "status below range", data: `{"status":99}`},
		{name: "status above range", data: `{"status":600}`},
		{name: "status zero", data: `{"status":0}`},
		{name: "status fraction", data: `{"status":400.5}`},
		{name: "status string", data: `{"status":"400"}`},
		{name: "title number", data: `{"title":5}`},
		{name: "type with whitespace", data: `{"type":"not a uri"}`},
		{name: "broken extension", data: `{"extra":[1,}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestRoundTrip_DecodeEncode(t *testing.T) {
	p := MustNew(
		WithType("https://errors.example.com/out-of-stock"),
		WithTitle("Out of Stock"),
		WithStatus(http.StatusConflict),
		WithDetail("sku A-100 has no stock"),
		WithInstance("urn:uuid:1b4e28ba-2fa1-11d2-883f-0016d3cca427"),
		WithExtension("sku", "A-100"),
		WithExtension("available", 0),
		WithExtension("warehouses", []string{"north", "south"}),
		WithExtension("meta", map[string]any{"attempt": 3, "cached": false}),
	)

	data, err := Encode(p)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(p), "decoded %s", data)

	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestRoundTrip_CanonicalForm(t *testing.T) {
	input := `  {"extra": {"z": 1, "a": [1, 2.50]}, "status": 404,
	"instance": "/orders/42", "title": "Not Found", "type": "about:blank"}  `
	want := `{"type":"about:blank","title":"Not Found","status":404,"instance":"/orders/42","extra":{"a":[1,2.50],"z":1}}`

	p, err := Decode([]byte(input))
	require.NoError(t, err)

	data, err := Encode(p)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestProblem_JSONInterfaces(t *testing.T) {
	p := MustNew(WithTitle("Forbidden"), WithStatus(http.StatusForbidden))

	data, err := json.Marshal(struct {
		Problem Problem `json:"problem"`
	}{Problem: p})
	require.NoError(t, err)
	assert.JSONEq(t, `{"problem":{"type":"about:blank","title":"Forbidden","status":403}}`, string(data))

	var out struct {
		Problem Problem `json:"problem"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, p.Equal(out.Problem))

	var bad Problem
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"status":"x"}`), &bad), ErrMalformedPayload)
}
