// Package problems writes application/problem+json responses for failed
// HTTP requests.
//
// Mapper is the single exit point: every error that reaches it produces
// exactly one response, and a failure inside the mapper itself degrades to a
// fixed 500 body instead of propagating.
package problems

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/Sokol111/ecommerce-problem-json/pkg/mapping"
	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ExtensionTraceID carries the OpenTelemetry trace id of the failed request.
const ExtensionTraceID = "traceId"

// GenericBody is written when a problem cannot be built or encoded.
var GenericBody = []byte(`{"type":"about:blank","title":"Internal Server Error","status":500}`)

// Recorder observes every problem written by a Mapper.
type Recorder interface {
	RecordProblem(ctx context.Context, p problem.Problem)
}

// Mapper turns errors into problem responses. It is safe for concurrent use.
type Mapper struct {
	factory   *mapping.Factory
	cfg       Config
	log       *zap.Logger
	throttler *logger.LogThrottler
	recorder  Recorder
	noTraceID bool
	newUUID   func() (uuid.UUID, error)
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithLogger sets the logger used for mapping failures.
func WithLogger(log *zap.Logger) MapperOption {
	return func(m *Mapper) {
		m.log = log
	}
}

// WithRecorder registers a hook called once per written problem.
func WithRecorder(r Recorder) MapperOption {
	return func(m *Mapper) {
		m.recorder = r
	}
}

// WithoutTraceID stops the mapper from adding the traceId extension.
func WithoutTraceID() MapperOption {
	return func(m *Mapper) {
		m.noTraceID = true
	}
}

// NewMapper creates a mapper on top of factory.
func NewMapper(factory *mapping.Factory, cfg Config, opts ...MapperOption) *Mapper {
	cfg.applyDefaults()
	m := &Mapper{
		factory: factory,
		cfg:     cfg,
		log:     zap.NewNop(),
		newUUID: uuid.NewRandom,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.throttler = logger.NewLogThrottler(m.log, 0)
	return m
}

// Intercept writes the problem for err with 500 as the status of unrecognized errors.
func (m *Mapper) Intercept(w http.ResponseWriter, r *http.Request, err error) {
	m.InterceptWithStatus(w, r, err, http.StatusInternalServerError)
}

// InterceptWithStatus writes the problem for err. defaultStatus is used when
// err matches no known category.
func (m *Mapper) InterceptWithStatus(w http.ResponseWriter, r *http.Request, err error, defaultStatus int) {
	defer func() {
		if rec := recover(); rec != nil {
			m.fail(w, r, fmt.Errorf("%w: panic: %v", problem.ErrMappingFailure, rec))
		}
	}()

	p, resolveErr := m.Resolve(r, err, defaultStatus)
	if resolveErr != nil {
		m.fail(w, r, resolveErr)
		return
	}
	m.write(w, r, p)
}

// Resolve builds the problem for err without writing it. Instance and traceId
// are added according to the configuration and the request context. A nil
// request gets neither.
func (m *Mapper) Resolve(r *http.Request, err error, defaultStatus int) (problem.Problem, error) {
	p, buildErr := m.factory.Build(err, defaultStatus)
	if buildErr != nil {
		return problem.Problem{}, buildErr
	}
	if r == nil {
		return p, nil
	}

	if p.Instance() == "" {
		instance, instErr := m.instance(r)
		if instErr != nil {
			return problem.Problem{}, instErr
		}
		if instance != "" {
			if p, buildErr = p.WithInstance(instance); buildErr != nil {
				return problem.Problem{}, fmt.Errorf("%w: %v", problem.ErrMappingFailure, buildErr)
			}
		}
	}

	if _, ok := p.Extension(ExtensionTraceID); !ok && !m.noTraceID {
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			if p, buildErr = p.WithExtension(ExtensionTraceID, sc.TraceID().String()); buildErr != nil {
				return problem.Problem{}, fmt.Errorf("%w: %v", problem.ErrMappingFailure, buildErr)
			}
		}
	}

	return p, nil
}

// Write renders p as the response.
func (m *Mapper) Write(w http.ResponseWriter, r *http.Request, p problem.Problem) {
	defer func() {
		if rec := recover(); rec != nil {
			m.fail(w, r, fmt.Errorf("%w: panic: %v", problem.ErrMappingFailure, rec))
		}
	}()
	m.write(w, r, p)
}

func (m *Mapper) write(w http.ResponseWriter, r *http.Request, p problem.Problem) {
	if m.cfg.HTML && r != nil && prefersHTML(r) {
		if err := renderHTML(w, r, p); err != nil {
			m.fail(w, r, err)
			return
		}
		m.record(r, p)
		return
	}

	body, err := problem.Encode(p)
	if err != nil {
		m.fail(w, r, err)
		return
	}
	writeBody(w, r, p.StatusOrDefault(), problem.ContentType, body)
	m.record(r, p)
}

func (m *Mapper) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, problem.ErrMappingFailure) {
		err = fmt.Errorf("%w: %v", problem.ErrMappingFailure, err)
	}
	fields := []zap.Field{zap.Error(err)}
	if r != nil && r.URL != nil {
		fields = append(fields, zap.String("method", r.Method), zap.String("path", r.URL.Path))
	}
	m.throttler.Error("problem-mapping", "failed to map error to problem, writing generic response", fields...)
	writeBody(w, r, http.StatusInternalServerError, problem.ContentType, GenericBody)
}

func (m *Mapper) record(r *http.Request, p problem.Problem) {
	if m.recorder == nil {
		return
	}
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	m.recorder.RecordProblem(ctx, p)
}

func (m *Mapper) instance(r *http.Request) (string, error) {
	switch m.cfg.Instance {
	case InstancePath:
		return r.URL.EscapedPath(), nil
	case InstanceUUID:
		id, err := m.newUUID()
		if err != nil {
			return "", fmt.Errorf("%w: generate instance id: %v", problem.ErrMappingFailure, err)
		}
		return id.URN(), nil
	default:
		return "", nil
	}
}

func writeBody(w http.ResponseWriter, r *http.Request, status int, contentType string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if r != nil && r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body) //nolint:errcheck // client went away
}
