// Overlay preview and clipboard helpers
package main

import (
	"os/exec"

	"github.com/atotto/clipboard"
	"github.com/skratchdot/open-golang/open"
)

// overlayURL is the address to add as a browser source
func overlayURL() string {
	return address(servingPort())
}

// panelURL is the address of the control panel
func panelURL() string {
	return address(servingPort()) + "/panel/"
}

// Starts a process, replaced in tests
var startProcess = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Opens a URL in the default browser, replaced in tests
var openURL = open.Run

// launchPreview opens the overlay in a small app window of the chosen browser
func launchPreview() bool {
	u := overlayURL()
	if bin := browserBinary(getConfig()); bin != "" {
		err := startProcess(bin, "--app="+u, "--window-size=600,250")
		if err == nil {
			lPrintln("Preview opened")
			return true
		}
		lPrintWarn("Failed to open the preview in "+bin+", using the default browser:", err)
	}
	if err := openURL(u); err != nil {
		lPrintErr("Failed to open the preview:", err)
		return false
	}
	lPrintln("Preview opened")
	return true
}

// copyOverlayURL puts the overlay URL on the clipboard
func copyOverlayURL() bool {
	u := overlayURL()
	if err := clipboard.WriteAll(u); err != nil {
		lPrintErr("Failed to copy the overlay URL:", err)
		return false
	}
	lPrintln("Copied " + u)
	return true
}

// copyErrorLogs puts the error log on the clipboard
func copyErrorLogs() bool {
	if err := clipboard.WriteAll(errorLogText()); err != nil {
		lPrintErr("Failed to copy the error log:", err)
		return false
	}
	lPrintln("Error log copied to the clipboard")
	return true
}
