//go:build windows

package main

import (
	"os"
	"path/filepath"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// browserCandidates lists where Chromium based browsers usually live
func browserCandidates() map[string][]string {
	progFiles := envOr("PROGRAMFILES", `C:\Program Files`)
	progFilesX86 := envOr("PROGRAMFILES(X86)", `C:\Program Files (x86)`)
	localAppData := envOr("LOCALAPPDATA", `C:\Users\Default\AppData\Local`)

	return map[string][]string{
		"Google Chrome": {
			filepath.Join(progFiles, `Google\Chrome\Application\chrome.exe`),
			filepath.Join(progFilesX86, `Google\Chrome\Application\chrome.exe`),
		},
		"Brave Browser": {
			filepath.Join(progFiles, `BraveSoftware\Brave-Browser\Application\brave.exe`),
			filepath.Join(progFilesX86, `BraveSoftware\Brave-Browser\Application\brave.exe`),
			filepath.Join(localAppData, `BraveSoftware\Brave-Browser\Application\brave.exe`),
		},
		"Vivaldi": {
			filepath.Join(localAppData, `Vivaldi\Application\vivaldi.exe`),
		},
		"Opera": {
			filepath.Join(localAppData, `Programs\Opera\launcher.exe`),
			filepath.Join(progFiles, `Opera\launcher.exe`),
		},
		"Opera GX": {
			filepath.Join(localAppData, `Programs\Opera GX\launcher.exe`),
		},
	}
}
