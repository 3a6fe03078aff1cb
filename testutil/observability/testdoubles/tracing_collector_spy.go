package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// SpySpanContext is the ledger.SpanContext handed out by TracingCollectorSpy.
type SpySpanContext struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements ledger.SpanContext.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// AddAttribute implements ledger.SpanContext.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// GetStatus returns the current status of the span.
func (c *SpySpanContext) GetStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// TracingCollectorSpy is a ledger.TracingCollector that captures tracing calls for testing.
type TracingCollectorSpy struct {
	spanRecords []SpySpanRecord
	mu          sync.Mutex
	recordCalls bool
}

// SpySpanRecord represents a recorded span.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	SpanContext     *SpySpanContext
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
// Set recordCalls to true to capture all tracing calls for inspection in tests.
func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{
		spanRecords: make([]SpySpanRecord, 0),
		recordCalls: recordCalls,
	}
}

// StartSpan implements ledger.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, ledger.SpanContext) {

	if !s.recordCalls {
		return ctx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{attributes: make(map[string]string)}

	s.spanRecords = append(s.spanRecords, SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

// FinishSpan implements ledger.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx ledger.SpanContext, status string, attrs map[string]string) {
	if !s.recordCalls || spanCtx == nil {
		return
	}

	spySpanCtx, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	spySpanCtx.SetStatus(status)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spanRecords {
		if s.spanRecords[i].SpanContext == spySpanCtx {
			s.spanRecords[i].Status = status
			s.spanRecords[i].EndAttributes = maps.Clone(attrs)
			break
		}
	}
}

// GetSpanRecords returns a copy of all captured span records.
func (s *TracingCollectorSpy) GetSpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpySpanRecord(nil), s.spanRecords...)
}

// SpanRecordMatcher provides a fluent interface for checking span records.
type SpanRecordMatcher struct {
	candidates []SpySpanRecord
}

// HasSpanRecordForName starts a fluent chain to check the span records with the given name.
func (s *TracingCollectorSpy) HasSpanRecordForName(name string) *SpanRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &SpanRecordMatcher{}
	for _, record := range s.spanRecords {
		if record.Name == name {
			m.candidates = append(m.candidates, record)
		}
	}

	return m
}

// WithStatus keeps only spans finished with the specified status.
func (m *SpanRecordMatcher) WithStatus(status string) *SpanRecordMatcher {
	var kept []SpySpanRecord

	for _, record := range m.candidates {
		if record.Status == status {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

// WithStartAttribute keeps only spans started with the specified attribute.
func (m *SpanRecordMatcher) WithStartAttribute(key, value string) *SpanRecordMatcher {
	var kept []SpySpanRecord

	for _, record := range m.candidates {
		if record.StartAttributes[key] == value {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

// WithEndAttributeKey keeps only spans finished with the specified attribute key present.
func (m *SpanRecordMatcher) WithEndAttributeKey(key string) *SpanRecordMatcher {
	var kept []SpySpanRecord

	for _, record := range m.candidates {
		if _, ok := record.EndAttributes[key]; ok {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

// Assert returns true if at least one span met all conditions in the fluent chain.
func (m *SpanRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}

var _ ledger.TracingCollector = (*TracingCollectorSpy)(nil)
