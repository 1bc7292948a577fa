package client

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
)

// maxProblemBytes caps how much of an error body is read.
const maxProblemBytes = 1 << 20

// IsProblemResponse reports whether resp carries a problem+json body.
func IsProblemResponse(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == problem.ContentType
}

// ProblemFromResponse turns an error response into a problem and closes its
// body. A problem+json body is decoded and kept as sent, except that the
// response status is filled in when the document has none. Any other body
// yields an about:blank problem for the response status.
func ProblemFromResponse(resp *http.Response) (problem.Problem, error) {
	defer resp.Body.Close() //nolint:errcheck

	if !problem.ValidStatus(resp.StatusCode) {
		return problem.Problem{}, fmt.Errorf("%w: upstream status %d", problem.ErrMalformedPayload, resp.StatusCode)
	}

	if !IsProblemResponse(resp) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProblemBytes)) //nolint:errcheck
		return problem.ForStatus(resp.StatusCode, "")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProblemBytes))
	if err != nil {
		return problem.Problem{}, fmt.Errorf("failed to read problem body: %w", err)
	}
	p, err := problem.Decode(data)
	if err != nil {
		return problem.Problem{}, err
	}
	if p.Status() != 0 {
		return p, nil
	}
	return withStatus(p, resp.StatusCode)
}

func withStatus(p problem.Problem, status int) (problem.Problem, error) {
	opts := []problem.Option{
		problem.WithType(p.Type()),
		problem.WithTitle(p.Title()),
		problem.WithStatus(status),
		problem.WithDetail(p.Detail()),
		problem.WithExtensions(p.Extensions()),
	}
	if p.Instance() != "" {
		opts = append(opts, problem.WithInstance(p.Instance()))
	}
	return problem.New(opts...)
}
