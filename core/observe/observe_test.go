package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeReplaysCurrentValue(t *testing.T) {
	c := NewContainer("seed", nil)

	var got string
	var origin Origin
	calls := 0
	c.Subscribe(func(v string, o Origin) {
		got = v
		origin = o
		calls++
	})

	assert.Equal(t, 1, calls, "replay must happen synchronously at subscribe time")
	assert.Equal(t, "seed", got)
	assert.Equal(t, OriginReplay, origin)
}

func TestCommitNotifiesInSubscriptionOrder(t *testing.T) {
	c := NewContainer(0, nil)

	var order []string
	c.Subscribe(func(v int, o Origin) {
		if o != OriginReplay {
			order = append(order, "first")
		}
	})
	c.Subscribe(func(v int, o Origin) {
		if o != OriginReplay {
			order = append(order, "second")
		}
	})

	c.Commit(1, OriginUser)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestCommitStoresBeforeNotify(t *testing.T) {
	c := NewContainer("", nil)

	var seen string
	c.Subscribe(func(v string, o Origin) {
		if o == OriginUser {
			// Reentrant read must observe the committed value.
			seen = c.Get()
		}
	})

	c.Commit("committed", OriginUser)
	assert.Equal(t, "committed", seen)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	c := NewContainer(0, nil)

	calls := 0
	cancel := c.Subscribe(func(v int, o Origin) {
		if o != OriginReplay {
			calls++
		}
	})

	cancel()
	cancel() // second call must be a no-op

	c.Commit(1, OriginUser)
	assert.Equal(t, 0, calls)
}

func TestPanickingSubscriberIsIsolated(t *testing.T) {
	c := NewContainer(0, nil)

	c.Subscribe(func(v int, o Origin) {
		if o == OriginUser {
			panic("broken observer")
		}
	})

	delivered := false
	c.Subscribe(func(v int, o Origin) {
		if o == OriginUser {
			delivered = true
		}
	})

	assert.NotPanics(t, func() { c.Commit(1, OriginUser) })
	assert.True(t, delivered, "healthy observer must still receive the commit")
}

func TestOriginIsCarriedWithEachCommit(t *testing.T) {
	c := NewContainer("", nil)

	var origins []Origin
	c.Subscribe(func(v string, o Origin) {
		origins = append(origins, o)
	})

	c.Commit("a", OriginUser)
	c.Commit("b", OriginSync)

	assert.Equal(t, []Origin{OriginReplay, OriginUser, OriginSync}, origins)
}
