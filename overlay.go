// Overlay page
package main

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// An overlay.html in the config folder replaces the built-in overlay
const overlayFile = "overlay.html"

var configDir string

// overlayPage returns the overlay HTML
func overlayPage() ([]byte, error) {
	if custom := filepath.Join(configDir, overlayFile); configDir != "" && fileExists(custom) {
		return os.ReadFile(custom)
	}
	return webUIFiles.ReadFile(path.Join(webUIDir, overlayFile))
}

// Serve "/"
func overlayHandler(w http.ResponseWriter, r *http.Request) {
	page, err := overlayPage()
	if err != nil {
		lPrintErr("Failed to read the overlay page:", err)
		http.Error(w, "overlay not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// Serve "/current_sound"
func soundHandler(w http.ResponseWriter, r *http.Request) {
	f := getConfig().SoundFile
	if !fileExists(f) {
		http.Error(w, "No file selected", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, f)
}
