package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_AfterFunc(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	fired := 0
	c.AfterFunc(500*time.Millisecond, func() { fired++ })
	assert.Equal(t, 1, c.Pending())

	c.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, fired)

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, start.Add(500*time.Millisecond), c.Now())

	c.Advance(time.Second)
	assert.Equal(t, 1, fired, "one-shot timer must not fire twice")
}

func TestFakeClock_Stop(t *testing.T) {
	c := NewFake(time.Now())

	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	c.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeClock_DeadlineOrder(t *testing.T) {
	c := NewFake(time.Now())

	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "third") })
	c.AfterFunc(1*time.Second, func() { order = append(order, "first") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "second") })

	c.Advance(5 * time.Second)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestNilTimerStop(t *testing.T) {
	var timer *Timer
	assert.False(t, timer.Stop())
}
