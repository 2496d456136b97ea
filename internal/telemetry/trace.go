package telemetry

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type traceKey struct{}

// TraceContext carries correlation IDs through a request.
type TraceContext struct {
	RequestID string `json:"request_id"`
	TraceID   string `json:"trace_id"`
	SpanID    string `json:"span_id"`
	ParentID  string `json:"parent_id,omitempty"`
	Operation string `json:"operation,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
}

// NewTraceContext creates a root trace context with a fresh TraceID and SpanID.
func NewTraceContext(requestID string) *TraceContext {
	return &TraceContext{
		RequestID: requestID,
		TraceID:   randomID(),
		SpanID:    randomID(),
	}
}

// ChildSpan creates a child trace context inheriting the TraceID and RequestID.
func (tc *TraceContext) ChildSpan() *TraceContext {
	return &TraceContext{
		RequestID: tc.RequestID,
		TraceID:   tc.TraceID,
		SpanID:    randomID(),
		ParentID:  tc.SpanID,
	}
}

// WithOperation returns a copy with the Operation set.
func (tc *TraceContext) WithOperation(op string) *TraceContext {
	child := *tc
	child.Operation = op
	return &child
}

// WithOwner returns a copy with the OwnerID set.
func (tc *TraceContext) WithOwner(ownerID string) *TraceContext {
	child := *tc
	child.OwnerID = ownerID
	return &child
}

// Fields returns key-value pairs suitable for structured logging.
func (tc *TraceContext) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"request_id": tc.RequestID,
		"trace_id":   tc.TraceID,
		"span_id":    tc.SpanID,
	}
	if tc.ParentID != "" {
		fields["parent_id"] = tc.ParentID
	}
	if tc.Operation != "" {
		fields["operation"] = tc.Operation
	}
	if tc.OwnerID != "" {
		fields["owner_id"] = tc.OwnerID
	}
	return fields
}

// ContextWithTrace stores a TraceContext in the context.
func ContextWithTrace(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, tc)
}

// TraceFromContext extracts a TraceContext from the context, or nil.
func TraceFromContext(ctx context.Context) *TraceContext {
	tc, _ := ctx.Value(traceKey{}).(*TraceContext)
	return tc
}

// WithTrace returns a logger enriched with trace fields from the context.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	tc := TraceFromContext(ctx)
	if tc == nil {
		return l
	}
	return l.WithFields(tc.Fields())
}

func randomID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}
