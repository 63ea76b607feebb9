// Desktop notifications
package main

import (
	"fmt"
	"os"

	"github.com/gen2brain/beeep"
	"github.com/valyala/fasthttp"
)

const (
	logoFile = "rumble_logo.ico"
	logoURL  = "https://rumble.com/favicon.ico"
)

var logoFileLocation string

// fetchLogo downloads the site icon used by notifications and the tray
func fetchLogo() error {
	hv := &httpVars{
		url:    logoURL,
		method: fasthttp.MethodGet,
	}
	resp, err := hv.httpRequest()
	if err != nil {
		return err
	}
	defer fasthttp.ReleaseResponse(resp)
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("download logo: status %d", resp.StatusCode())
	}
	return os.WriteFile(logoFileLocation, resp.Body(), 0644)
}

// desktopNotify shows a desktop notification
func desktopNotify(text string) {
	icon := logoFileLocation
	if !fileExists(icon) {
		icon = ""
	}
	if err := beeep.Notify("Rumble Repost Alert", text, icon); err != nil {
		lPrintWarn("Desktop notification failed:", err)
	}
}
