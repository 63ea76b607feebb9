// Browser login and browser mode tracking
package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/atomic"
)

const (
	loginPage    = "https://rumble.com/login.php"
	blankPage    = "https://rumble.com/404"
	bellSelector = ".user-notifications--bell-button"
)

// Consecutive failed polls before browser mode gives up
const maxBrowserFailures = 5

var isLoggingIn = atomic.NewBool(false)

var (
	browsersOnce sync.Once
	browsersMap  map[string]string
)

// findBrowsers maps browser names to executables, "Auto-Detect" lets rod pick
func findBrowsers() map[string]string {
	found := map[string]string{autoDetect: ""}
	for name, paths := range browserCandidates() {
		for _, p := range paths {
			if bin, ok := resolveCandidate(p); ok {
				found[name] = bin
				break
			}
		}
	}
	return found
}

// resolveCandidate checks an absolute path or looks a bare name up in PATH
func resolveCandidate(p string) (string, bool) {
	if filepath.IsAbs(p) {
		return p, fileExists(p)
	}
	bin, err := exec.LookPath(p)
	if err != nil {
		return "", false
	}
	return bin, true
}

// detectedBrowsers returns the browsers found at startup
func detectedBrowsers() map[string]string {
	browsersOnce.Do(func() {
		browsersMap = findBrowsers()
	})
	return browsersMap
}

// browserBinary is the executable chosen in the settings, "" for rod's default
func browserBinary(cfg settings) string {
	if cfg.UseOverride {
		return cfg.BrowserPath
	}
	return detectedBrowsers()[cfg.SelectedBrowser]
}

// browserSession is a launched browser and its process
type browserSession struct {
	l *launcher.Launcher
	b *rod.Browser
}

// launchBrowser starts the configured browser and connects to it
func launchBrowser(ctx context.Context, headless bool) (*browserSession, error) {
	bin := browserBinary(getConfig())
	if bin != "" {
		path, ok := resolveCandidate(bin)
		if !ok {
			return nil, fmt.Errorf("browser %s not found", bin)
		}
		bin = path
	}
	l := launcher.New().
		Context(ctx).
		Headless(headless).
		Set("mute-audio").
		Set("disable-gpu")
	if bin != "" {
		l = l.Bin(bin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(u).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	return &browserSession{l: l, b: b}, nil
}

func (bs *browserSession) close() {
	if bs == nil {
		return
	}
	_ = bs.b.Close()
	bs.l.Kill()
	bs.l.Cleanup()
}

// captureSession reads the cookies and user agent of a logged in page
func captureSession(page *rod.Page) (*session, error) {
	cookies, err := page.Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}
	s := &session{Cookies: make([]savedCookie, 0, len(cookies))}
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, fromNetworkCookie(c))
	}
	ua, err := page.Eval(`() => navigator.userAgent`)
	if err != nil {
		return nil, fmt.Errorf("get user agent: %w", err)
	}
	s.UserAgent = ua.Value.Str()
	return s, nil
}

// startLogin opens a visible browser on the login page
func startLogin() bool {
	if isLoggedIn.Load() {
		lPrintWarn("Already logged in, run logout first to log in again")
		return false
	}
	if isTracking.Load() {
		lPrintWarn("Stop tracking before logging in")
		return false
	}
	if !isLoggingIn.CompareAndSwap(false, true) {
		lPrintWarn("Already waiting for a login")
		return false
	}
	go runLoginMonitor(mainCtx)
	return true
}

// runLoginMonitor waits until the user logged in, then saves the session
func runLoginMonitor(ctx context.Context) {
	defer isLoggingIn.Store(false)
	defer func() {
		if err := recover(); err != nil {
			lPrintErr("Recovering from panic in runLoginMonitor(), the error is:", err)
		}
	}()

	lPrintln("Opening Browser for Login...")
	bs, err := launchBrowser(ctx, false)
	if err != nil {
		lPrintErr("Login Init Error:", err)
		return
	}
	defer bs.close()

	page, err := bs.b.Page(proto.TargetCreateTarget{URL: loginPage})
	if err != nil {
		lPrintErr("Login Init Error:", err)
		return
	}
	lPrintln("Please log in manually.")

	failures := 0
	for {
		if err := sleepCtx(ctx, time.Second); err != nil {
			return
		}
		has, _, err := page.Has(bellSelector)
		if err != nil {
			failures++
			if failures >= maxBrowserFailures {
				lPrintErr("Login window lost:", err)
				return
			}
			continue
		}
		failures = 0
		if !has {
			continue
		}

		lPrintln("Login Detected! Saving session...")
		s, err := captureSession(page)
		if err != nil {
			lPrintErr("Failed to save session:", err)
			return
		}
		if err := saveSession(s); err != nil {
			lPrintErr("Failed to save session:", err)
			return
		}
		isLoggedIn.Store(true)
		lPrintln("Login successful. Window closed.")
		return
	}
}

// scrapeNotifications reloads the page, opens the bell panel and parses it
func scrapeNotifications(ctx context.Context, page *rod.Page) ([]repost, error) {
	p := page.Context(ctx)
	if err := p.Reload(); err != nil {
		return nil, fmt.Errorf("reload: %w", err)
	}
	if err := sleepCtx(ctx, 3*time.Second); err != nil {
		return nil, err
	}
	bell, err := p.Timeout(10 * time.Second).Element(bellSelector)
	if err != nil {
		return nil, fmt.Errorf("bell button not found: %w", err)
	}
	if _, err := bell.Eval(`() => this.click()`); err != nil {
		return nil, fmt.Errorf("click bell: %w", err)
	}
	if err := sleepCtx(ctx, 1500*time.Millisecond); err != nil {
		return nil, err
	}
	body, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return parsePanel(strings.NewReader(body))
}

// trackBrowser polls the notifications panel in a browser until ctx is done
func trackBrowser(ctx context.Context, s *session) error {
	lPrintln("Starting Browser Tracker (Hidden)...")
	bs, err := launchBrowser(ctx, getConfig().HeadlessBrowser)
	if err != nil {
		return fmt.Errorf("start browser mode: %w", err)
	}
	defer bs.close()

	page, err := bs.b.Page(proto.TargetCreateTarget{URL: blankPage})
	if err != nil {
		return fmt.Errorf("start browser mode: %w", err)
	}
	if s != nil {
		if err := page.SetCookies(s.cookieParams()); err != nil {
			lPrintWarn("Failed to restore cookies:", err)
		}
	}
	if err := page.Navigate(siteURL); err != nil {
		return fmt.Errorf("start browser mode: %w", err)
	}

	setTrackMode(modeBrowser)
	return pollLoop(ctx, modeBrowser, func(ctx context.Context) ([]repost, error) {
		return scrapeNotifications(ctx, page)
	}, func(err error, failures int) error {
		if failures >= maxBrowserFailures {
			return fmt.Errorf("browser tracker gave up: %w", err)
		}
		if !errors.Is(err, context.Canceled) {
			lPrintErr("Browser Error:", err)
		}
		return nil
	})
}
