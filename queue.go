// Alert queue
package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
)

var (
	alertMinDisplay = 10 * time.Second // shortest time an alert stays up
	alertGap        = 5 * time.Second  // pause between two alerts
	testAlertMax    = 20 * time.Second // test alerts hide by themselves after this
	soundLength     = audioDuration    // length of the alert sound, replaced in tests
)

var isMuted = atomic.NewBool(false)

// alertQueue is a FIFO of alerts waiting for the overlay
type alertQueue struct {
	mu    sync.Mutex
	items []alert
	ready chan struct{}
}

func newAlertQueue() *alertQueue {
	return &alertQueue{ready: make(chan struct{}, 1)}
}

// Alerts waiting to be shown
var alerts = newAlertQueue()

func (q *alertQueue) push(a alert) {
	q.mu.Lock()
	q.items = append(q.items, a)
	n := len(q.items)
	q.mu.Unlock()
	queueLengthGauge.Set(float64(n))
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop waits for the oldest alert
func (q *alertQueue) pop(ctx context.Context) (alert, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			a := q.items[0]
			q.items = q.items[1:]
			n := len(q.items)
			q.mu.Unlock()
			queueLengthGauge.Set(float64(n))
			return a, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return alert{}, ctx.Err()
		case <-q.ready:
		}
	}
}

func (q *alertQueue) length() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// alertDuration is how long an alert stays visible, the sound length counts only withSound
func alertDuration(withSound bool) time.Duration {
	d := alertMinDisplay
	if !withSound {
		return d
	}
	if l, err := soundLength(getConfig().SoundFile); err == nil && l > d {
		d = l
	}
	return d
}

// hasSound reports whether the configured alert sound exists
func hasSound() bool {
	return fileExists(getConfig().SoundFile)
}

// runAlertQueue shows the queued alerts one by one until ctx is done
func runAlertQueue(ctx context.Context, q *alertQueue) {
	for {
		a, err := q.pop(ctx)
		if err != nil {
			return
		}
		if err := playAlert(ctx, a); err != nil {
			return
		}
	}
}

// playAlert shows a, hides it and waits out the gap
func playAlert(ctx context.Context, a alert) (err error) {
	defer func() {
		if e := recover(); e != nil {
			lPrintErr("Queue Error:", e)
			err = sleepCtx(ctx, time.Second)
		}
	}()

	withSound := hasSound() && !isMuted.Load()
	showAlert(a, withSound, timeNow())
	alertsShownTotal.WithLabelValues("repost").Inc()
	if err := sleepCtx(ctx, alertDuration(withSound)); err != nil {
		hideAlert()
		return err
	}
	hideAlert()
	return sleepCtx(ctx, alertGap)
}

// Pending auto-hide of the test alert
var testAlert struct {
	sync.Mutex
	timer *time.Timer
}

// startTestAlert shows a sample alert, bypassing the queue
func startTestAlert() {
	testAlert.Lock()
	defer testAlert.Unlock()
	if testAlert.timer != nil {
		testAlert.timer.Stop()
	}
	d := alertDuration(hasSound())
	if d > testAlertMax {
		d = testAlertMax
	}
	showAlert(alert{User: "TEST USER", Video: "Test Video Title"}, true, timeNow())
	alertsShownTotal.WithLabelValues("test").Inc()
	lPrintln("Test alert triggered")
	testAlert.timer = time.AfterFunc(d, stopTestAlert)
}

// stopTestAlert hides the overlay
func stopTestAlert() {
	testAlert.Lock()
	if testAlert.timer != nil {
		testAlert.timer.Stop()
		testAlert.timer = nil
	}
	testAlert.Unlock()
	hideAlert()
}
