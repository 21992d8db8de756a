package state

import (
	"slices"
	"sync"
	"weak"
)

// Observer receives history changes. Embed NopObserver to implement only
// the events you need.
type Observer interface {
	// StrokeBegan is called when a gesture opens a new stroke.
	StrokeBegan(h *History, s *Stroke)
	// ElementFinished is called when an element joins the element list.
	ElementFinished(h *History, e Element)
	Cleared(h *History, m *ClearMarker)
	Undone(h *History)
	Redone(h *History)
	// HistoryReset is called after the canvas replaced old with new.
	HistoryReset(old, new *History)
}

// NopObserver implements Observer with no-ops.
type NopObserver struct{}

func (NopObserver) StrokeBegan(*History, *Stroke)     {}
func (NopObserver) ElementFinished(*History, Element) {}
func (NopObserver) Cleared(*History, *ClearMarker)    {}
func (NopObserver) Undone(*History)                   {}
func (NopObserver) Redone(*History)                   {}
func (NopObserver) HistoryReset(old, new *History)    {}

// Handle identifies a registration in Observers.
type Handle uint64

type observerEntry struct {
	id Handle
	// get returns nil once a weakly held observer is gone.
	get func() Observer
}

// Observers is a registry of history observers. Weak registrations do not
// keep the observer alive; once it is collected it is skipped and pruned.
type Observers struct {
	mu      sync.Mutex
	next    Handle
	entries []observerEntry
}

// Add registers o and keeps it alive until removed.
func (r *Observers) Add(o Observer) Handle {
	return r.add(func() Observer { return o })
}

// Watch registers o without extending its lifetime.
func Watch[T any, P interface {
	*T
	Observer
}](r *Observers, o P) Handle {
	wp := weak.Make((*T)(o))
	return r.add(func() Observer {
		if p := wp.Value(); p != nil {
			return P(p)
		}
		return nil
	})
}

func (r *Observers) add(get func() Observer) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.entries = append(r.entries, observerEntry{id: r.next, get: get})
	return r.next
}

// Remove drops a registration. It reports whether h was registered.
func (r *Observers) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(e observerEntry) bool { return e.id == h })
	return len(r.entries) != n
}

// Len returns the number of registrations whose observer is still alive.
func (r *Observers) Len() int {
	n := 0
	r.each(func(Observer) { n++ })
	return n
}

// HistoryReset tells every observer that old was replaced by new.
func (r *Observers) HistoryReset(old, new *History) {
	r.each(func(o Observer) { o.HistoryReset(old, new) })
}

// each calls fn for every live observer, in registration order, on a
// snapshot of the registry. Dead weak entries are pruned.
func (r *Observers) each(fn func(Observer)) {
	if r == nil {
		return
	}
	r.mu.Lock()
	snapshot := slices.Clone(r.entries)
	r.mu.Unlock()

	var dead []Handle
	for _, e := range snapshot {
		o := e.get()
		if o == nil {
			dead = append(dead, e.id)
			continue
		}
		fn(o)
	}
	if len(dead) == 0 {
		return
	}
	r.mu.Lock()
	r.entries = slices.DeleteFunc(r.entries, func(e observerEntry) bool {
		return slices.Contains(dead, e.id)
	})
	r.mu.Unlock()
}
