package problems

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/Sokol111/ecommerce-problem-json/pkg/mapping"
	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
)

const htmlContentType = "text/html; charset=utf-8"

var pageTemplate = template.Must(template.New("problem").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Status}} {{.Title}}</title>
</head>
<body>
<h1>{{.Status}} {{.Title}}</h1>
{{- if .Detail}}
<p>{{.Detail}}</p>
{{- end}}
{{- if .Violations}}
<ul>
{{- range .Violations}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
<dl>
<dt>type</dt><dd>{{.Type}}</dd>
{{- if .Instance}}
<dt>instance</dt><dd>{{.Instance}}</dd>
{{- end}}
{{- range .Extensions}}
<dt>{{.Key}}</dt><dd>{{.Value}}</dd>
{{- end}}
</dl>
</body>
</html>
`))

type htmlExtension struct {
	Key   string
	Value string
}

type htmlPage struct {
	Status     int
	Title      string
	Type       string
	Detail     string
	Instance   string
	Violations []string
	Extensions []htmlExtension
}

func renderHTML(w http.ResponseWriter, r *http.Request, p problem.Problem) error {
	page := htmlPage{
		Status:   p.StatusOrDefault(),
		Title:    p.Title(),
		Type:     p.Type(),
		Detail:   p.Detail(),
		Instance: p.Instance(),
	}
	if page.Title == "" {
		page.Title = http.StatusText(page.Status)
	}

	for _, key := range p.ExtensionKeys() {
		value, _ := p.Extension(key)
		if key == mapping.ExtensionViolations {
			if lines, ok := violationLines(value); ok {
				page.Violations = lines
				continue
			}
		}
		text, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%w: extension %q: %v", problem.ErrMappingFailure, key, err)
		}
		page.Extensions = append(page.Extensions, htmlExtension{Key: key, Value: string(text)})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return fmt.Errorf("%w: render html: %v", problem.ErrMappingFailure, err)
	}
	writeBody(w, r, page.Status, htmlContentType, buf.Bytes())
	return nil
}

func violationLines(value any) ([]string, bool) {
	switch v := value.(type) {
	case []failure.Violation:
		lines := make([]string, len(v))
		for i, violation := range v {
			lines[i] = violation.String()
		}
		return lines, true
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			field, _ := m["field"].(string)
			message, _ := m["message"].(string)
			lines = append(lines, failure.Violation{Field: field, Message: message}.String())
		}
		return lines, true
	default:
		return nil, false
	}
}

// prefersHTML reports whether the Accept header ranks text/html above every
// JSON media type. Wildcards do not count as a preference for HTML.
func prefersHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}

	var htmlQ, jsonQ float64
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if q, err = strconv.ParseFloat(raw, 64); err != nil {
				continue
			}
		}
		switch {
		case mediaType == "text/html" || mediaType == "application/xhtml+xml":
			htmlQ = max(htmlQ, q)
		case mediaType == "application/json" || mediaType == problem.ContentType || strings.HasSuffix(mediaType, "+json"):
			jsonQ = max(jsonQ, q)
		}
	}
	return htmlQ > 0 && htmlQ > jsonQ
}
