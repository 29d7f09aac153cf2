package inmem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/edupay/core/form"
)

func newSession(id string) *form.Session {
	return &form.Session{ID: id, Presenter: form.NewPresenter(form.KindLogin, form.PresenterConfig{})}
}

func TestFormStore(t *testing.T) {
	store := NewFormStore(time.Hour)

	a, b := newSession("a"), newSession("b")
	store.Add(a)
	store.Add(b)
	require.Equal(t, 2, store.Count())

	got, ok := store.Get("a")
	require.True(t, ok)
	require.Same(t, a, got)

	_, ok = store.Get("missing")
	require.False(t, ok)

	require.True(t, store.Delete("a"))
	require.False(t, store.Delete("a"))
	require.Equal(t, form.ErrClosed, a.Presenter.Reset())
	require.NoError(t, b.Presenter.Reset())

	store.Flush()
	require.Equal(t, 0, store.Count())
	require.Equal(t, form.ErrClosed, b.Presenter.Reset())
}

func TestFormStore_ExpiredSessionsAreClosed(t *testing.T) {
	store := NewFormStore(20 * time.Millisecond)
	sess := newSession("x")
	store.Add(sess)

	require.Eventually(t, func() bool {
		return sess.Presenter.Reset() == form.ErrClosed
	}, time.Second, 5*time.Millisecond)
	_, ok := store.Get("x")
	require.False(t, ok)
}
