// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package instrumenter

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// InstrumentEnabler decides whether operations are measured at all.
type InstrumentEnabler interface {
	Enable() bool
}

// AttributesExtractor contributes labels to an operation. OnStart runs before
// the request is handed on and OnEnd runs once the response is known.
type AttributesExtractor[REQUEST any, RESPONSE any] interface {
	OnStart(attributes []attribute.KeyValue, request REQUEST) []attribute.KeyValue
	OnEnd(attributes []attribute.KeyValue, request REQUEST, response RESPONSE) []attribute.KeyValue
}

// OperationListener is notified once per completed operation with the full
// label set and the operation's start and end timestamps.
type OperationListener interface {
	OnAfterEnd(ctx context.Context, attributes []attribute.KeyValue, startTime, endTime time.Time)
}

// Instrumenter encapsulates the logic for gathering labels of a
// request/response lifecycle and handing them to the listeners that record
// metrics. Start is called when the request is accepted and End when its
// response is complete. Operations that never reach End are not reported.
//
// An Instrumenter holds no per-call state and is safe for concurrent use.
type Instrumenter[REQUEST any, RESPONSE any] struct {
	enabler              InstrumentEnabler
	attributesExtractors []AttributesExtractor[REQUEST, RESPONSE]
	operationListeners   []OperationListener
}

// Operation is a single in-flight call started by Instrumenter.Start.
type Operation[REQUEST any, RESPONSE any] struct {
	instrumenter *Instrumenter[REQUEST, RESPONSE]
	request      REQUEST
	startTime    time.Time
	attrs        []attribute.KeyValue
}

const defaultAttributesSliceSize = 8

// ShouldStart reports whether new operations are measured.
func (i *Instrumenter[REQUEST, RESPONSE]) ShouldStart() bool {
	return i.enabler == nil || i.enabler.Enable()
}

// Start captures the start time and the request-side labels. It returns nil
// when instrumentation is disabled; End on a nil Operation is a no-op.
func (i *Instrumenter[REQUEST, RESPONSE]) Start(request REQUEST) *Operation[REQUEST, RESPONSE] {
	return i.StartAt(request, time.Now())
}

// StartAt is Start with an explicit start timestamp.
func (i *Instrumenter[REQUEST, RESPONSE]) StartAt(request REQUEST, startTime time.Time) *Operation[REQUEST, RESPONSE] {
	if !i.ShouldStart() {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, defaultAttributesSliceSize)
	for _, extractor := range i.attributesExtractors {
		attrs = extractor.OnStart(attrs, request)
	}
	return &Operation[REQUEST, RESPONSE]{
		instrumenter: i,
		request:      request,
		startTime:    startTime,
		attrs:        attrs,
	}
}

// End adds the response-side labels and notifies every listener.
func (o *Operation[REQUEST, RESPONSE]) End(ctx context.Context, response RESPONSE) {
	o.EndAt(ctx, response, time.Now())
}

// EndAt is End with an explicit end timestamp.
func (o *Operation[REQUEST, RESPONSE]) EndAt(ctx context.Context, response RESPONSE, endTime time.Time) {
	if o == nil {
		return
	}
	attrs := o.attrs
	for _, extractor := range o.instrumenter.attributesExtractors {
		attrs = extractor.OnEnd(attrs, o.request, response)
	}
	for _, listener := range o.instrumenter.operationListeners {
		listener.OnAfterEnd(ctx, attrs, o.startTime, endTime)
	}
}

// Attributes returns the labels gathered so far.
func (o *Operation[REQUEST, RESPONSE]) Attributes() []attribute.KeyValue {
	if o == nil {
		return nil
	}
	return o.attrs
}
