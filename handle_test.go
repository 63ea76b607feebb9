package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCmd(t *testing.T) {
	setupTest(t)

	assert.Equal(t, "true", handleCmd("mute"))
	assert.True(t, isMuted.Load())
	assert.Equal(t, "true", handleCmd("unmute"))
	assert.False(t, isMuted.Load())

	assert.Equal(t, "false", handleCmd("stoptrack"))
	assert.Equal(t, "", handleCmd("dance"))

	var help string
	require.NoError(t, json.Unmarshal([]byte(handleCmd("help")), &help))
	assert.Contains(t, help, "starttrack")

	assert.Equal(t, "true", handleCmd("testalert"))
	assert.True(t, getState().IsVisible)
	assert.Equal(t, "true", handleCmd("stoptest"))
	assert.False(t, getState().IsVisible)
}

func TestStatusCmd(t *testing.T) {
	setupTest(t)
	isLoggedIn.Store(true)
	alerts.push(alert{User: "a"})
	require.NoError(t, history.Add("x"))

	var st statusInfo
	require.NoError(t, json.Unmarshal([]byte(handleCmd("status")), &st))
	assert.Equal(t, statusInfo{
		LoggedIn:    true,
		QueueLength: 1,
		HistorySize: 1,
		OverlayURL:  "http://localhost:5050",
		PanelURL:    "http://localhost:5050/panel/",
		Version:     appVersion,
	}, st)
}

func TestLaunchPreview(t *testing.T) {
	setupTest(t)
	oldStart, oldOpen := startProcess, openURL
	t.Cleanup(func() { startProcess, openURL = oldStart, oldOpen })

	var started []string
	var opened string
	startProcess = func(name string, args ...string) error {
		started = append([]string{name}, args...)
		return nil
	}
	openURL = func(u string) error {
		opened = u
		return nil
	}

	require.NoError(t, updateConfig(func(s *settings) {
		s.UseOverride = true
		s.BrowserPath = "/opt/brave/brave"
	}))
	assert.True(t, launchPreview())
	assert.Equal(t, []string{"/opt/brave/brave", "--app=http://localhost:5050", "--window-size=600,250"}, started)
	assert.Empty(t, opened)

	startProcess = func(string, ...string) error { return errors.New("no such file") }
	assert.True(t, launchPreview())
	assert.Equal(t, "http://localhost:5050", opened)

	openURL = func(string) error { return errors.New("no browser") }
	assert.False(t, launchPreview())
}
