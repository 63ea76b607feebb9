// Command handling
package main

import (
	"encoding/json"
	"strconv"
)

var boolDispatch = map[string]func() bool{
	"starttrack": startTracking,
	"stoptrack":  stopTracking,
	"login":      startLogin,
	"logout":     logout,
	"mute":       mute,
	"unmute":     unmute,
	"testalert":  testAlertCmd,
	"stoptest":   stopTestCmd,
	"preview":    launchPreview,
	"copyurl":    copyOverlayURL,
	"copylogs":   copyErrorLogs,
}

// Convert a bool to a string
var boolStr = strconv.FormatBool

// statusInfo is the answer of the status command
type statusInfo struct {
	Tracking    bool   `json:"tracking"`
	Mode        string `json:"mode"`
	LoggedIn    bool   `json:"logged_in"`
	LoggingIn   bool   `json:"logging_in"`
	Muted       bool   `json:"muted"`
	QueueLength int    `json:"queue_length"`
	HistorySize int    `json:"history_size"`
	OverlayURL  string `json:"overlay_url"`
	PanelURL    string `json:"panel_url"`
	Version     string `json:"version"`
}

func getStatus() statusInfo {
	st := statusInfo{
		Tracking:    isTracking.Load(),
		LoggedIn:    isLoggedIn.Load(),
		LoggingIn:   isLoggingIn.Load(),
		Muted:       isMuted.Load(),
		QueueLength: alerts.length(),
		OverlayURL:  overlayURL(),
		PanelURL:    panelURL(),
		Version:     appVersion,
	}
	if st.Tracking {
		st.Mode = getTrackMode().String()
	}
	if history != nil {
		st.HistorySize = history.Len()
	}
	return st
}

func mute() bool {
	isMuted.Store(true)
	lPrintln("Alert audio muted")
	return true
}

func unmute() bool {
	isMuted.Store(false)
	lPrintln("Alert audio unmuted")
	return true
}

func testAlertCmd() bool {
	startTestAlert()
	return true
}

func stopTestCmd() bool {
	stopTestAlert()
	return true
}

// handleCmd runs cmd and returns its JSON answer, "" for an unknown command
func handleCmd(cmd string) string {
	if d, ok := boolDispatch[cmd]; ok {
		return boolStr(d())
	}
	switch cmd {
	case "status":
		data, err := json.MarshalIndent(getStatus(), "", "    ")
		if err != nil {
			lPrintErr("Failed to encode the status:", err)
			return ""
		}
		return string(data)
	case "help":
		data, _ := json.Marshal(helpMsg)
		return string(data)
	case "quit":
		go quitRun()
		return "true"
	default:
		lPrintWarn("Unknown command: " + cmd)
		return ""
	}
}
