package state

import (
	"slices"
	"sync"

	"BrushBoard/internal/logging"
)

// History is the document: finished elements in draw order, at most one
// element still being authored, and the undo stack. It is linear: opening
// or finishing a new element drops everything that could be redone.
//
// Replaying Elements in order from an empty canvas, treating a
// ClearMarker as "clear", then drawing Current reproduces the picture.
type History struct {
	mu       sync.RWMutex
	elements []Element
	current  Element
	undone   []Element
	clock    Clock

	observers *Observers
}

// NewHistory returns an empty history notifying obs. A nil obs gets a
// fresh registry.
func NewHistory(obs *Observers) *History {
	if obs == nil {
		obs = &Observers{}
	}
	return &History{observers: obs}
}

// Observers returns the registry this history notifies.
func (h *History) Observers() *Observers { return h.observers }

// Append adds e to the element being authored. Segments of a stroke drawn
// with the same brush by the open gesture extend the current stroke;
// anything else finishes the current element and opens e in its place.
func (h *History) Append(e Element) {
	h.mu.Lock()
	if cur, ok := h.current.(*Stroke); ok {
		if s, ok := e.(*Stroke); ok && cur.BrushName == s.BrushName && cur.Color == s.Color {
			cur.Append(s.Segments...)
			h.mu.Unlock()
			return
		}
	}
	finished := h.finishLocked()
	h.current = e
	h.undone = nil
	h.mu.Unlock()

	if finished != nil {
		h.observers.each(func(o Observer) { o.ElementFinished(h, finished) })
	}
	if s, ok := e.(*Stroke); ok {
		logging.Logger().Debug("stroke began", "brush", s.BrushName)
		h.observers.each(func(o Observer) { o.StrokeBegan(h, s) })
	}
}

// FinishCurrentElement moves the current element, if any, to the end of
// the element list. It does nothing when no element is open.
func (h *History) FinishCurrentElement() {
	h.mu.Lock()
	finished := h.finishLocked()
	h.mu.Unlock()

	if finished != nil {
		h.observers.each(func(o Observer) { o.ElementFinished(h, finished) })
	}
}

func (h *History) finishLocked() Element {
	e := h.current
	if e == nil {
		return nil
	}
	e.setIndex(h.clock.Tick())
	h.elements = append(h.elements, e)
	h.current = nil
	h.undone = nil
	return e
}

// Insert appends an already finished element, such as a chartlet or a
// stroke received from a peer, after finishing the current one.
func (h *History) Insert(e Element) {
	h.mu.Lock()
	prev := h.finishLocked()
	h.current = e
	e = h.finishLocked()
	h.mu.Unlock()

	h.observers.each(func(o Observer) {
		if prev != nil {
			o.ElementFinished(h, prev)
		}
		o.ElementFinished(h, e)
	})
}

// Clear records a ClearMarker, hiding every element before it. Clearing
// an already clear canvas records nothing and returns false.
func (h *History) Clear(owner string) bool {
	h.mu.Lock()
	prev := h.finishLocked()
	if n := len(h.elements); n > 0 {
		if _, ok := h.elements[n-1].(*ClearMarker); ok {
			h.mu.Unlock()
			h.notifyFinished(prev)
			return false
		}
	}
	m := &ClearMarker{Owner: owner}
	h.current = m
	h.finishLocked()
	h.mu.Unlock()

	h.notifyFinished(prev)
	h.observers.each(func(o Observer) { o.Cleared(h, m) })
	return true
}

func (h *History) notifyFinished(e Element) {
	if e == nil {
		return
	}
	h.observers.each(func(o Observer) { o.ElementFinished(h, e) })
}

// Undo finishes the current element, then moves the last element onto the
// undo stack. It returns false when there is nothing to undo.
func (h *History) Undo() bool {
	h.mu.Lock()
	prev := h.finishLocked()
	n := len(h.elements)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	h.undone = append(h.undone, h.elements[n-1])
	h.elements = h.elements[:n-1]
	h.mu.Unlock()

	h.notifyFinished(prev)
	h.observers.each(func(o Observer) { o.Undone(h) })
	return true
}

// Redo moves the most recently undone element back onto the element list.
// It returns false when there is nothing to redo or an element is open.
func (h *History) Redo() bool {
	h.mu.Lock()
	n := len(h.undone)
	if n == 0 || h.current != nil {
		h.mu.Unlock()
		return false
	}
	h.elements = append(h.elements, h.undone[n-1])
	h.undone = h.undone[:n-1]
	h.mu.Unlock()

	h.observers.each(func(o Observer) { o.Redone(h) })
	return true
}

func (h *History) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.elements) > 0 || h.current != nil
}

func (h *History) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.undone) > 0 && h.current == nil
}

// Elements returns the finished elements in draw order.
func (h *History) Elements() []Element {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.elements)
}

// Visible returns the finished elements after the last ClearMarker.
func (h *History) Visible() []Element {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := len(h.elements) - 1; i >= 0; i-- {
		if _, ok := h.elements[i].(*ClearMarker); ok {
			return slices.Clone(h.elements[i+1:])
		}
	}
	return slices.Clone(h.elements)
}

// Current returns the element being authored, or nil.
func (h *History) Current() Element {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Element returns the finished or current element with the given index.
func (h *History) Element(index int) (Element, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current != nil && h.current.Idx() == index {
		return h.current, true
	}
	for _, e := range h.elements {
		if e.Idx() == index {
			return e, true
		}
	}
	return nil, false
}

// Snapshot is a deep copy of a history's content.
type Snapshot struct {
	Elements []Element
	Current  Element
	Undone   []Element
	Clock    int
}

// Snapshot copies the content of h. Later changes to h do not affect it.
func (h *History) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Snapshot{
		Elements: cloneElements(h.elements),
		Current:  cloneElement(h.current),
		Undone:   cloneElements(h.undone),
		Clock:    h.clock.Now(),
	}
}

// Restore replaces the content of h with a copy of s. Observers are kept
// and not notified; callers redraw.
func (h *History) Restore(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.elements = cloneElements(s.Elements)
	h.current = cloneElement(s.Current)
	h.undone = cloneElements(s.Undone)
	h.clock.Update(s.Clock)
}

// Load replaces the content of h with finished elements, for example a
// decoded document. Indices are kept and the clock moves past them.
func (h *History) Load(elements []Element) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.elements = slices.Clone(elements)
	h.current = nil
	h.undone = nil
	for _, e := range elements {
		h.clock.Update(e.Idx())
	}
}

func cloneElements(es []Element) []Element {
	if es == nil {
		return nil
	}
	out := make([]Element, len(es))
	for i, e := range es {
		out[i] = cloneElement(e)
	}
	return out
}

func cloneElement(e Element) Element {
	switch e := e.(type) {
	case *Stroke:
		return e.Clone()
	case *Chartlet:
		c := *e
		return &c
	case *ClearMarker:
		m := *e
		return &m
	}
	return nil
}
