// Tracking loop
package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

type trackMode int

const (
	modeFetch trackMode = iota
	modeBrowser
)

func (m trackMode) String() string {
	if m == modeBrowser {
		return "browser"
	}
	return "fetch"
}

// Unit of poll_interval, shortened in tests
var pollUnit = time.Second

var isTracking = atomic.NewBool(false)

// Running tracker
var tracker struct {
	sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	mode   trackMode
}

func setTrackMode(m trackMode) {
	tracker.Lock()
	tracker.mode = m
	tracker.Unlock()
	trackModeGauge.Set(float64(m))
}

func getTrackMode() trackMode {
	tracker.Lock()
	defer tracker.Unlock()
	return tracker.mode
}

// pollInterval is the time between two polls
func pollInterval() time.Duration {
	return time.Duration(getConfig().PollInterval) * pollUnit
}

// startTracking starts the tracker, it needs a saved login
func startTracking() bool {
	if isLoggingIn.Load() {
		lPrintWarn("Finish logging in before tracking")
		return false
	}
	if !isLoggedIn.Load() {
		lPrintWarn("Not logged in, run login first")
		return false
	}
	s, err := loadSession()
	if err != nil {
		lPrintErr("Failed to load the saved login:", err)
		return false
	}
	if !isTracking.CompareAndSwap(false, true) {
		lPrintWarn("Already tracking")
		return false
	}

	ctx, cancel := context.WithCancel(mainCtx)
	done := make(chan struct{})
	tracker.Lock()
	tracker.cancel = cancel
	tracker.done = done
	tracker.mode = modeFetch
	tracker.Unlock()

	go runTracker(ctx, s, done)
	return true
}

// stopTracking stops the tracker and waits for it to exit
func stopTracking() bool {
	tracker.Lock()
	cancel, done := tracker.cancel, tracker.done
	tracker.cancel, tracker.done = nil, nil
	tracker.Unlock()
	if cancel == nil {
		lPrintWarn("Not tracking")
		return false
	}
	cancel()
	<-done
	return true
}

func runTracker(ctx context.Context, s *session, done chan struct{}) {
	defer close(done)
	defer func() {
		tracker.Lock()
		if tracker.done == done {
			tracker.cancel()
			tracker.cancel, tracker.done = nil, nil
		}
		tracker.Unlock()
		isTracking.Store(false)
		trackingGauge.Set(0)
		lPrintln("Tracking Stopped.")
	}()
	defer func() {
		if err := recover(); err != nil {
			lPrintErr("Recovering from panic in runTracker(), the error is:", err)
		}
	}()

	trackingGauge.Set(1)
	setTrackMode(modeFetch)
	lPrintln("Tracking Started (API Mode)...")

	cb := newFeedBreaker()
	err := pollLoop(ctx, modeFetch, func(context.Context) ([]repost, error) {
		return fetchReposts(cb, s)
	}, func(err error, _ int) error {
		if errors.Is(err, errBlocked) {
			return err
		}
		lPrintErr("API Fetch Error:", err)
		return nil
	})
	if !errors.Is(err, errBlocked) {
		return
	}

	lPrintWarn("Session Blocked (403). Switching to Browser Mode...")
	if err := trackBrowser(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
		lPrintErr("Fallback Error:", err)
	}
}

// pollLoop calls src every poll interval until ctx is done or onErr returns an error.
// failures counts consecutive failed polls.
func pollLoop(ctx context.Context, mode trackMode, src func(context.Context) ([]repost, error), onErr func(err error, failures int) error) error {
	limiter := rate.NewLimiter(rate.Every(pollInterval()), 1)
	failures := 0
	for {
		limiter.SetLimit(rate.Every(pollInterval()))
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		reposts, err := src(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		pollsTotal.WithLabelValues(mode.String()).Inc()
		if err != nil {
			failures++
			pollErrorsTotal.WithLabelValues(mode.String()).Inc()
			if err := onErr(err, failures); err != nil {
				return err
			}
			continue
		}
		failures = 0
		handleReposts(reposts)
	}
}

// handleReposts records unseen reposts and queues their alerts.
// reposts is newest first, the newest repost_limit ones are queued oldest first.
func handleReposts(reposts []repost) int {
	var fresh []repost
	for _, r := range reposts {
		if history.Seen(r.ID) {
			continue
		}
		if err := history.Add(r.ID); err != nil {
			lPrintErr("Failed to save the repost history:", err)
		}
		lPrintln("NEW REPOST: " + r.User)
		repostsTotal.Inc()
		if getConfig().DesktopNotify {
			desktopNotify(r.User + " reposted " + r.Video)
		}
		fresh = append(fresh, r)
	}

	if limit := getConfig().RepostLimit; limit > 0 && len(fresh) > limit {
		fresh = fresh[:limit]
	}
	for i := len(fresh) - 1; i >= 0; i-- {
		alerts.push(fresh[i].alert())
	}
	return len(fresh)
}
