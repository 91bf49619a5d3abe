package hostapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisposable_Idempotent(t *testing.T) {
	calls := 0
	fail := errors.New("fail")
	d := NewDisposable(func() error { calls++; return fail })

	assert.Same(t, fail, d.Dispose())
	assert.Same(t, fail, d.Dispose())
	assert.Equal(t, 1, calls)

	assert.NoError(t, NewDisposable(nil).Dispose())
}

func TestDisposableList_DisposeAll(t *testing.T) {
	var l DisposableList
	var order []int
	for i := range 3 {
		l.Add(NewDisposable(func() error {
			order = append(order, i)
			if i == 1 {
				return errors.New("second")
			}
			return nil
		}))
	}
	l.Add(nil)
	assert.Equal(t, 3, l.Len())

	errs := l.DisposeAll()
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Len(t, errs, 1)
	assert.Zero(t, l.Len())
	assert.Empty(t, l.DisposeAll())
}
