// Package telemetry wraps sentry-go for storelens: one transaction per HTTP
// request or export job, with service spans for searches, snapshots and
// exports underneath.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	serviceName  = "storelens"
	flushTimeout = 5 * time.Second
)

// health checks are never traced
var unsampledTransactions = map[string]bool{
	"GET /health": true,
}

// scrubbedHeaders never leave the process; they carry API keys.
var scrubbedHeaders = []string{"Authorization", "Cookie", "X-Api-Key"}

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Debug            bool
}

// Init starts the Sentry client and returns a flush function for shutdown.
// An empty DSN disables telemetry and yields a no-op flush.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate == 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:           cfg.DSN,
		Environment:   cfg.Environment,
		Release:       cfg.Release,
		EnableTracing: true,
		Debug:         cfg.Debug,
		ServerName:    serviceName,
		TracesSampler: sampler(cfg.TracesSampleRate),
		BeforeSend:    scrubEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}

	log.Printf("sentry: tracing initialized (environment: %s, sample_rate: %.2f)", cfg.Environment, cfg.TracesSampleRate)
	return func() { sentry.Flush(flushTimeout) }, nil
}

func sampler(rate float64) sentry.TracesSampler {
	return func(ctx sentry.SamplingContext) float64 {
		if unsampledTransactions[ctx.Span.Name] {
			return 0
		}
		// child spans follow the parent's decision
		if ctx.Span.ParentSpanID != (sentry.SpanID{}) {
			if ctx.Span.Sampled.Bool() {
				return 1
			}
			return 0
		}
		return rate
	}
}

func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	event.Request.Cookies = ""
	for _, h := range scrubbedHeaders {
		for k := range event.Request.Headers {
			if http.CanonicalHeaderKey(k) == h {
				delete(event.Request.Headers, k)
			}
		}
	}
	return event
}

// SpanAttributes are the tags attached to service spans.
type SpanAttributes struct {
	WorkspaceID string
	SnapshotID  string
	JobID       string
	SavedSearch string
	MatchMode   string
	Operation   string
}

func (a SpanAttributes) apply(span *sentry.Span) {
	for tag, v := range map[string]string{
		"workspace_id":  a.WorkspaceID,
		"snapshot_id":   a.SnapshotID,
		"export_job_id": a.JobID,
		"saved_search":  a.SavedSearch,
		"match_mode":    a.MatchMode,
	} {
		if v != "" {
			span.SetTag(tag, v)
		}
	}
	if a.Operation != "" {
		span.SetData("operation", a.Operation)
	}
}

// Span wraps sentry.Span. The zero value and a nil *Span are no-ops.
type Span struct {
	inner *sentry.Span
}

func (s *Span) live() bool {
	return s != nil && s.inner != nil
}

// End finishes the span.
func (s *Span) End() {
	if s.live() {
		s.inner.Finish()
	}
}

// SetCounts records how many records were scanned and how many matched.
func (s *Span) SetCounts(records, matched int) {
	if !s.live() {
		return
	}
	s.inner.SetData("records", records)
	s.inner.SetData("matched", matched)
}

// SetError marks the span as errored and captures the exception.
func (s *Span) SetError(err error) {
	if !s.live() || err == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	CaptureError(s.inner.Context(), err)
}

// StartSpan starts a child of the span carried by ctx, or a new transaction
// when ctx has none (e.g. an export job picked up by the worker). name is
// used as both the span operation and the transaction name.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	attrs.apply(span)
	return span.Context(), &Span{inner: span}
}

// hub returns the request's hub when there is one, else the global hub.
func hub(ctx context.Context) *sentry.Hub {
	if h := sentry.GetHubFromContext(ctx); h != nil {
		return h
	}
	return sentry.CurrentHub()
}

// CaptureError reports err on the hub of ctx.
func CaptureError(ctx context.Context, err error) {
	hub(ctx).CaptureException(err)
}

// AddBreadcrumb records a breadcrumb, e.g. an export job state change.
func AddBreadcrumb(ctx context.Context, category, message string) {
	hub(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}, nil)
}
