package crosshair

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModeCycleOrder(t *testing.T) {
	c := NewCoordinator(10 * time.Millisecond)

	want := []Mode{ModeFree, ModeSnap, ModeDual, ModeNone}
	for _, expected := range want {
		got := c.RequestSwitch()
		assert.Equal(t, expected, got)
		time.Sleep(25 * time.Millisecond)
	}
}

func TestSwitchRejectedWhileLocked(t *testing.T) {
	c := NewCoordinator(80 * time.Millisecond)

	first := c.RequestSwitch()
	assert.Equal(t, ModeFree, first)

	// A second request inside the lock window returns the mode unchanged.
	second := c.RequestSwitch()
	assert.Equal(t, ModeFree, second)
	assert.Equal(t, ModeFree, c.CurrentMode())

	time.Sleep(120 * time.Millisecond)
	third := c.RequestSwitch()
	assert.Equal(t, ModeSnap, third)
}

func TestSetModeValidation(t *testing.T) {
	c := NewCoordinator(10 * time.Millisecond)

	c.SetMode(ModeDual)
	assert.Equal(t, ModeDual, c.CurrentMode())

	c.SetMode(Mode(17))
	assert.Equal(t, ModeNone, c.CurrentMode())

	c.SetMode(Mode(-1))
	assert.Equal(t, ModeNone, c.CurrentMode())
}

func TestSetModeBypassesLock(t *testing.T) {
	c := NewCoordinator(200 * time.Millisecond)
	c.RequestSwitch()
	c.SetMode(ModeDual)
	assert.Equal(t, ModeDual, c.CurrentMode())
}

func TestSubscribeNotifiesAndUnsubscribes(t *testing.T) {
	c := NewCoordinator(10 * time.Millisecond)

	var got []Mode
	off := c.Subscribe(func(m Mode) { got = append(got, m) })

	c.RequestSwitch()
	c.SetMode(ModeDual)
	assert.Equal(t, []Mode{ModeFree, ModeDual}, got)

	// Setting the same mode again is not a change.
	c.SetMode(ModeDual)
	assert.Len(t, got, 2)

	off()
	c.SetMode(ModeSnap)
	assert.Len(t, got, 2)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "none", ModeNone.String())
	assert.Equal(t, "dual", ModeDual.String())
	assert.Equal(t, "invalid", Mode(9).String())
	assert.True(t, ModeSnap.Valid())
	assert.False(t, Mode(4).Valid())
}
