package flight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadline_Unlimited(t *testing.T) {
	d := NewDeadline(0)
	assert.True(t, d.Unlimited())

	_, ok := d.Remaining()
	assert.False(t, ok)

	assert.NoError(t, d.Check(PhaseRead))

	timer, stop := d.Timer()
	defer stop()
	assert.Nil(t, timer)
}

func TestDeadline_Remaining(t *testing.T) {
	d := NewDeadline(time.Hour)
	assert.False(t, d.Unlimited())
	assert.Equal(t, time.Hour, d.Budget())

	first, ok := d.Remaining()
	require.True(t, ok)
	assert.Greater(t, first, 59*time.Minute)

	second, _ := d.Remaining()
	assert.LessOrEqual(t, second, first, "remaining only shrinks")
}

func TestDeadline_CheckExpired(t *testing.T) {
	d := NewDeadline(time.Nanosecond)
	time.Sleep(time.Millisecond)

	err := d.Check(PhaseHandshake)
	require.Error(t, err)

	var terr *TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, PhaseHandshake, terr.Phase)
	assert.Equal(t, time.Nanosecond, terr.Budget)
	assert.True(t, terr.Timeout())
	assert.Contains(t, terr.Error(), "connection handshake")
}

func TestDeadline_TimerFires(t *testing.T) {
	d := NewDeadline(10 * time.Millisecond)
	timer, stop := d.Timer()
	defer stop()

	select {
	case <-timer:
	case <-time.After(time.Second):
		t.Fatal("deadline timer never fired")
	}
}
