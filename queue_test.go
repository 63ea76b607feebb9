package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestAlertQueueFIFO(t *testing.T) {
	q := newAlertQueue()
	q.push(alert{User: "a"})
	q.push(alert{User: "b"})
	assert.Equal(t, 2, q.length())

	ctx := context.Background()
	a, err := q.pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", a.User)
	a, err = q.pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", a.User)
	assert.Equal(t, 0, q.length())
}

func TestAlertQueuePopWaits(t *testing.T) {
	q := newAlertQueue()
	go func() {
		time.Sleep(20 * time.Millisecond)
		q.push(alert{User: "late"})
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a, err := q.pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", a.User)
}

func TestAlertQueuePopCancel(t *testing.T) {
	q := newAlertQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.pop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunAlertQueue(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	setupTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runAlertQueue(ctx, alerts)
		close(done)
	}()

	alerts.push(alert{User: "first", Video: "v1"})
	alerts.push(alert{User: "second", Video: "v2"})

	visible := func(user string) func() bool {
		return func() bool {
			st := getState()
			return st.IsVisible && st.CurrentAlert != nil && st.CurrentAlert.User == user
		}
	}
	require.Eventually(t, visible("first"), time.Second, 2*time.Millisecond)
	require.Eventually(t, visible("second"), time.Second, 2*time.Millisecond)
	require.Eventually(t, func() bool { return !getState().IsVisible }, time.Second, 2*time.Millisecond)
	assert.Equal(t, "second", getState().CurrentAlert.User)

	cancel()
	<-done
}

func TestPlayAlertAudio(t *testing.T) {
	dir := setupTest(t)
	alertMinDisplay = time.Millisecond
	alertGap = time.Millisecond
	ctx := context.Background()

	// no sound file
	require.NoError(t, playAlert(ctx, alert{User: "a"}))
	assert.Zero(t, getState().AudioTimestamp)

	sound := filepath.Join(dir, "ding.wav")
	require.NoError(t, os.WriteFile(sound, []byte("x"), 0644))
	require.NoError(t, updateConfig(func(s *settings) { s.SoundFile = sound }))

	isMuted.Store(true)
	require.NoError(t, playAlert(ctx, alert{User: "b"}))
	assert.Zero(t, getState().AudioTimestamp)

	isMuted.Store(false)
	require.NoError(t, playAlert(ctx, alert{User: "c"}))
	assert.Greater(t, getState().AudioTimestamp, 0.0)
	assert.False(t, getState().IsVisible)
}

func TestAlertDuration(t *testing.T) {
	setupTest(t)
	alertMinDisplay = 10 * time.Second

	assert.Equal(t, 10*time.Second, alertDuration(true))

	soundLength = func(string) (time.Duration, error) { return 15 * time.Second, nil }
	assert.Equal(t, 15*time.Second, alertDuration(true))
	assert.Equal(t, 10*time.Second, alertDuration(false))

	soundLength = func(string) (time.Duration, error) { return 3 * time.Second, nil }
	assert.Equal(t, 10*time.Second, alertDuration(true))
}

func TestTestAlert(t *testing.T) {
	dir := setupTest(t)
	sound := filepath.Join(dir, "long.mp3")
	require.NoError(t, os.WriteFile(sound, []byte("x"), 0644))
	require.NoError(t, updateConfig(func(s *settings) { s.SoundFile = sound }))
	soundLength = func(string) (time.Duration, error) { return time.Minute, nil }
	alertMinDisplay = 10 * time.Millisecond
	testAlertMax = 50 * time.Millisecond

	isMuted.Store(true)
	startTestAlert()
	st := getState()
	require.NotNil(t, st.CurrentAlert)
	assert.Equal(t, alert{User: "TEST USER", Video: "Test Video Title"}, *st.CurrentAlert)
	assert.True(t, st.IsVisible)
	assert.Greater(t, st.AudioTimestamp, 0.0)

	require.Eventually(t, func() bool { return !getState().IsVisible }, time.Second, 5*time.Millisecond)

	testAlertMax = time.Hour
	startTestAlert()
	assert.True(t, getState().IsVisible)
	stopTestAlert()
	assert.False(t, getState().IsVisible)
}
