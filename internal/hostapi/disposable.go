package hostapi

import (
	"sync"
)

// Disposable releases a registration. Dispose is idempotent: later calls
// return the first call's result.
type Disposable interface {
	Dispose() error
}

type disposable struct {
	once sync.Once
	fn   func() error
	err  error
}

// NewDisposable wraps fn. A nil fn yields a no-op disposable.
func NewDisposable(fn func() error) Disposable {
	return &disposable{fn: fn}
}

func (d *disposable) Dispose() error {
	d.once.Do(func() {
		if d.fn != nil {
			d.err = d.fn()
		}
	})
	return d.err
}

// DisposableList is an ordered collection of disposables. Safe for
// concurrent use.
type DisposableList struct {
	mu    sync.Mutex
	items []Disposable
}

// Add appends d.
func (l *DisposableList) Add(d Disposable) {
	if d == nil {
		return
	}
	l.mu.Lock()
	l.items = append(l.items, d)
	l.mu.Unlock()
}

// Len returns the number of held disposables.
func (l *DisposableList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// DisposeAll disposes every item in insertion order, empties the list and
// returns the individual failures. One failure does not stop the rest.
func (l *DisposableList) DisposeAll() []error {
	l.mu.Lock()
	items := l.items
	l.items = nil
	l.mu.Unlock()

	var errs []error
	for _, d := range items {
		if err := d.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
