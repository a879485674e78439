// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package instrumenter

type defaultInstrumentEnabler struct{}

func NewDefaultInstrumentEnabler() InstrumentEnabler {
	return &defaultInstrumentEnabler{}
}

func (a *defaultInstrumentEnabler) Enable() bool {
	return true
}

// StaticEnabler is an InstrumentEnabler fixed at construction.
type StaticEnabler bool

func (s StaticEnabler) Enable() bool {
	return bool(s)
}

type Builder[REQUEST any, RESPONSE any] struct {
	Enabler              InstrumentEnabler
	AttributesExtractors []AttributesExtractor[REQUEST, RESPONSE]
	OperationListeners   []OperationListener
}

func (b *Builder[REQUEST, RESPONSE]) Init() *Builder[REQUEST, RESPONSE] {
	b.Enabler = &defaultInstrumentEnabler{}
	b.AttributesExtractors = make([]AttributesExtractor[REQUEST, RESPONSE], 0)
	b.OperationListeners = make([]OperationListener, 0)
	return b
}

func (b *Builder[REQUEST, RESPONSE]) SetInstrumentEnabler(enabler InstrumentEnabler) *Builder[REQUEST, RESPONSE] {
	b.Enabler = enabler
	return b
}

func (b *Builder[REQUEST, RESPONSE]) AddAttributesExtractor(attributesExtractor ...AttributesExtractor[REQUEST, RESPONSE]) *Builder[REQUEST, RESPONSE] {
	b.AttributesExtractors = append(b.AttributesExtractors, attributesExtractor...)
	return b
}

func (b *Builder[REQUEST, RESPONSE]) AddOperationListeners(operationListener ...OperationListener) *Builder[REQUEST, RESPONSE] {
	b.OperationListeners = append(b.OperationListeners, operationListener...)
	return b
}

func (b *Builder[REQUEST, RESPONSE]) BuildInstrumenter() *Instrumenter[REQUEST, RESPONSE] {
	return &Instrumenter[REQUEST, RESPONSE]{
		enabler:              b.Enabler,
		attributesExtractors: b.AttributesExtractors,
		operationListeners:   b.OperationListeners,
	}
}
