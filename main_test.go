package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTest points every file at a temp folder and resets the shared state
func setupTest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	oldDir, oldCfg, oldCookies, oldLogo := configDir, configFileLocation, cookiesFileLocation, logoFileLocation
	oldHistory, oldAlerts := history, alerts
	oldMin, oldGap, oldTestMax, oldSound, oldUnit := alertMinDisplay, alertGap, testAlertMax, soundLength, pollUnit
	t.Cleanup(func() {
		stopTestAlert()
		if history != nil {
			_ = history.Close()
		}
		configDir, configFileLocation, cookiesFileLocation, logoFileLocation = oldDir, oldCfg, oldCookies, oldLogo
		history, alerts = oldHistory, oldAlerts
		alertMinDisplay, alertGap, testAlertMax, soundLength, pollUnit = oldMin, oldGap, oldTestMax, oldSound, oldUnit
		isLoggedIn.Store(false)
		isLoggingIn.Store(false)
		isTracking.Store(false)
		isMuted.Store(false)
		resetState()
	})

	configDir = dir
	configFileLocation = filepath.Join(dir, configFile)
	cookiesFileLocation = filepath.Join(dir, cookiesFile)
	logoFileLocation = filepath.Join(dir, logoFile)

	config.Lock()
	config.s = defaultSettings
	config.written = nil
	config.Unlock()
	resetState()

	h, err := openJSONHistory(filepath.Join(dir, historyFile))
	require.NoError(t, err)
	history = h
	alerts = newAlertQueue()

	alertMinDisplay = 100 * time.Millisecond
	alertGap = 20 * time.Millisecond
	testAlertMax = 20 * time.Second
	soundLength = func(string) (time.Duration, error) { return 0, errNoSound }
	pollUnit = 5 * time.Millisecond

	isLoggedIn.Store(false)
	isLoggingIn.Store(false)
	isTracking.Store(false)
	isMuted.Store(false)

	logLines.Lock()
	logLines.lines = nil
	logLines.Unlock()
	errorLogs.Lock()
	errorLogs.lines = nil
	errorLogs.Unlock()
	return dir
}

func TestLockConfigDir(t *testing.T) {
	setupTest(t)

	lock, err := lockConfigDir()
	require.NoError(t, err)

	_, err = lockConfigDir()
	require.ErrorIs(t, err, errAlreadyRunning)
	assert.NoFileExists(t, configFileLocation)

	require.NoError(t, lock.Unlock())
	again, err := lockConfigDir()
	require.NoError(t, err)
	require.NoError(t, again.Unlock())
}

func TestListenPortIgnoresBadFlag(t *testing.T) {
	setupTest(t)
	old := *portFlag
	t.Cleanup(func() { *portFlag = old })

	*portFlag = 70000
	assert.Equal(t, 5050, listenPort())
	*portFlag = -1
	assert.Equal(t, 5050, listenPort())
}
