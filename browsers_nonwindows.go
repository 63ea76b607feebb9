//go:build !windows

package main

// browserCandidates lists Chromium based browsers, bare names are looked up in PATH
func browserCandidates() map[string][]string {
	return map[string][]string{
		"Google Chrome": {
			"google-chrome",
			"google-chrome-stable",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		},
		"Chromium": {
			"chromium",
			"chromium-browser",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		},
		"Brave Browser": {
			"brave-browser",
			"brave",
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
		},
		"Vivaldi": {
			"vivaldi",
			"/Applications/Vivaldi.app/Contents/MacOS/Vivaldi",
		},
		"Opera": {
			"opera",
			"/Applications/Opera.app/Contents/MacOS/Opera",
		},
	}
}
