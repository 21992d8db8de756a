package net

import (
	"errors"
	"fmt"

	"BrushBoard/internal/doc"
	"BrushBoard/internal/state"
)

// MessageType names what a Message carries.
type MessageType string

const (
	TypeDraw     MessageType = "draw"
	TypeChartlet MessageType = "chartlet"
	TypeClear    MessageType = "clear"
)

// Message is a finished element sent between boards. Strokes and
// chartlets travel in their document form.
type Message struct {
	Type     MessageType   `json:"type"`
	Origin   string        `json:"origin"`
	Stroke   *doc.Stroke   `json:"stroke,omitempty"`
	Chartlet *doc.Chartlet `json:"chartlet,omitempty"`
}

var errEmptyMessage = errors.New("message has no payload")

// MessageFor wraps a finished element. It reports false for elements
// that cannot be shared.
func MessageFor(e state.Element) (Message, bool) {
	switch e := e.(type) {
	case *state.Stroke:
		s := doc.StrokeFrom(e)
		return Message{Type: TypeDraw, Origin: e.Author(), Stroke: &s}, true
	case *state.Chartlet:
		c := doc.ChartletFrom(e)
		return Message{Type: TypeChartlet, Origin: e.Author(), Chartlet: &c}, true
	case *state.ClearMarker:
		return Message{Type: TypeClear, Origin: e.Author()}, true
	}
	return Message{}, false
}

// Element rebuilds the element carried by m. The element's author is the
// message origin.
func (m Message) Element(brushes doc.BrushFinder) (state.Element, error) {
	switch m.Type {
	case TypeDraw:
		if m.Stroke == nil {
			return nil, errEmptyMessage
		}
		s, err := m.Stroke.Element(brushes)
		if err != nil {
			return nil, err
		}
		s.Owner = m.Origin
		return s, nil
	case TypeChartlet:
		if m.Chartlet == nil {
			return nil, errEmptyMessage
		}
		c := m.Chartlet.Element()
		c.Owner = m.Origin
		return c, nil
	case TypeClear:
		return &state.ClearMarker{Owner: m.Origin}, nil
	}
	return nil, fmt.Errorf("unknown message type %q", m.Type)
}

// Outbox forwards locally authored elements to send as they finish.
// Register it with the history's observers.
type Outbox struct {
	state.NopObserver
	send func(Message)
}

func NewOutbox(send func(Message)) *Outbox {
	return &Outbox{send: send}
}

func (o *Outbox) ElementFinished(_ *state.History, e state.Element) {
	if _, ok := e.(*state.ClearMarker); ok {
		return
	}
	o.forward(e)
}

func (o *Outbox) Cleared(_ *state.History, m *state.ClearMarker) {
	o.forward(m)
}

func (o *Outbox) forward(e state.Element) {
	if e.Author() != state.LocalSite() {
		return
	}
	if m, ok := MessageFor(e); ok {
		o.send(m)
	}
}
