// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package instrumenter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

type testExtractor struct{}

func (testExtractor) OnStart(attrs []attribute.KeyValue, request string) []attribute.KeyValue {
	return append(attrs, attribute.String("request", request))
}

func (testExtractor) OnEnd(attrs []attribute.KeyValue, _ string, response int) []attribute.KeyValue {
	return append(attrs, attribute.Int("response", response))
}

type recordedOperation struct {
	attrs              []attribute.KeyValue
	startTime, endTime time.Time
}

type testListener struct {
	ops []recordedOperation
}

func (l *testListener) OnAfterEnd(_ context.Context, attrs []attribute.KeyValue, startTime, endTime time.Time) {
	l.ops = append(l.ops, recordedOperation{attrs: attrs, startTime: startTime, endTime: endTime})
}

func newTestInstrumenter(enabler InstrumentEnabler, listener OperationListener) *Instrumenter[string, int] {
	builder := &Builder[string, int]{}
	return builder.Init().
		SetInstrumentEnabler(enabler).
		AddAttributesExtractor(testExtractor{}).
		AddOperationListeners(listener).
		BuildInstrumenter()
}

func TestInstrumenterStartEnd(t *testing.T) {
	listener := &testListener{}
	inst := newTestInstrumenter(NewDefaultInstrumentEnabler(), listener)

	start := time.Unix(100, 0)
	op := inst.StartAt("ping", start)
	require.NotNil(t, op)
	assert.Equal(t, []attribute.KeyValue{attribute.String("request", "ping")}, op.Attributes())

	op.EndAt(t.Context(), 7, start.Add(5*time.Millisecond))

	require.Len(t, listener.ops, 1)
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("request", "ping"),
		attribute.Int("response", 7),
	}, listener.ops[0].attrs)
	assert.Equal(t, start, listener.ops[0].startTime)
	assert.Equal(t, 5*time.Millisecond, listener.ops[0].endTime.Sub(listener.ops[0].startTime))
}

func TestInstrumenterDisabled(t *testing.T) {
	listener := &testListener{}
	inst := newTestInstrumenter(StaticEnabler(false), listener)

	assert.False(t, inst.ShouldStart())
	op := inst.Start("ping")
	assert.Nil(t, op)
	assert.Nil(t, op.Attributes())

	// End on a disabled operation is a no-op.
	op.End(t.Context(), 1)
	assert.Empty(t, listener.ops)
}

func TestInstrumenterNilEnabler(t *testing.T) {
	inst := &Instrumenter[string, int]{}
	assert.True(t, inst.ShouldStart())
}
