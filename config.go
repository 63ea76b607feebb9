// Settings
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const configFile = "tracker_config.json"

var configFileLocation string

// Fonts offered by the control panel, all served by Google Fonts
var googleFonts = []string{
	"Roboto", "Open Sans", "Lato", "Montserrat", "Oswald", "Source Sans Pro",
	"Slabo 27px", "Raleway", "PT Sans", "Merriweather", "Noto Sans", "Nunito",
	"Concert One", "Prompt", "Work Sans", "Rubik", "Fjalla One", "Bangers",
	"Poiret One", "Righteous", "Russo One", "Handlee", "Patrick Hand",
	"Creepster", "Anton", "Orbitron", "Luckiest Guy", "Fredoka One",
	"Special Elite", "Teko", "Alfa Slab One", "Audiowide", "Black Ops One",
	"Carter One", "Changa One", "Passion One", "Press Start 2P", "Quantico",
	"Sigmar One", "Squada One", "Syncopate", "Titan One", "Ultra",
	"VT323", "Voltaire", "Wallpoet", "Yeon Sung", "Zilla Slab Highlight",
}

const autoDetect = "Auto-Detect"

// settings is the persisted configuration, also sent to the overlay
type settings struct {
	SoundFile       string  `json:"sound_file"`       // alert sound, wav or mp3
	PollInterval    int     `json:"poll_interval"`    // seconds between polls
	OverlayPort     int     `json:"overlay_port"`     // port of the local server
	FontSize        int     `json:"font_size"`        // control panel font size
	RepostLimit     int     `json:"repost_limit"`     // max alerts queued per poll, 0 is unlimited
	FontFamily      string  `json:"font_family"`      // overlay font
	RecentColor     string  `json:"recent_color"`     // user name color
	OlderColor      string  `json:"older_color"`      // video title color
	TitleText       string  `json:"title_text"`       // overlay header
	TitleColor      string  `json:"title_color"`      // overlay header color
	TitleSize       int     `json:"title_size"`       // overlay header size in px
	TitleAlign      string  `json:"title_align"`      // left, center or right
	BrowserPath     string  `json:"browser_path"`     // custom browser executable
	SelectedBrowser string  `json:"selected_browser"` // name from findBrowsers
	UseOverride     bool    `json:"use_override"`     // use BrowserPath instead of SelectedBrowser
	RememberLogin   bool    `json:"remember_login"`   // reuse saved cookies on start
	AudioVolume     float64 `json:"audio_volume"`     // 0 to 1
	HeadlessBrowser bool    `json:"headless_browser"` // hide the browser in browser mode
	DesktopNotify   bool    `json:"desktop_notify"`   // desktop notification per repost
	HistoryDriver   string  `json:"history_driver"`   // json or sqlite
}

var defaultSettings = settings{
	PollInterval:    5,
	OverlayPort:     5050,
	FontSize:        14,
	RepostLimit:     5,
	FontFamily:      "Roboto",
	RecentColor:     "#85c742",
	OlderColor:      "#ffffff",
	TitleText:       "NEW REPOST",
	TitleColor:      "#ffffff",
	TitleSize:       24,
	TitleAlign:      "center",
	SelectedBrowser: autoDetect,
	RememberLogin:   true,
	AudioVolume:     0.5,
	HeadlessBrowser: true,
	HistoryDriver:   "json",
}

// Current settings
var config struct {
	sync.RWMutex
	s       settings
	written []byte // last content this process wrote to the file
}

func init() {
	config.s = defaultSettings
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalize fixes out of range values
func (s *settings) normalize() {
	if s.PollInterval < 1 {
		s.PollInterval = 1
	}
	if s.RepostLimit < 0 {
		s.RepostLimit = 0
	}
	if s.OverlayPort < 1 || s.OverlayPort > 65535 {
		s.OverlayPort = defaultSettings.OverlayPort
	}
	s.FontSize = clamp(s.FontSize, 8, 30)
	if s.TitleSize < 1 {
		s.TitleSize = defaultSettings.TitleSize
	}
	switch s.TitleAlign {
	case "left", "center", "right":
	default:
		s.TitleAlign = "center"
	}
	if s.AudioVolume < 0 {
		s.AudioVolume = 0
	}
	if s.AudioVolume > 1 {
		s.AudioVolume = 1
	}
	if s.FontFamily == "" {
		s.FontFamily = defaultSettings.FontFamily
	}
	if _, ok := detectedBrowsers()[s.SelectedBrowser]; !ok {
		s.SelectedBrowser = autoDetect
	}
	switch s.HistoryDriver {
	case "json", "sqlite":
	default:
		s.HistoryDriver = "json"
	}
}

// getConfig returns a copy of the current settings
func getConfig() settings {
	config.RLock()
	defer config.RUnlock()
	return config.s
}

// parseConfig overlays data on the defaults
func parseConfig(data []byte) (settings, error) {
	s := defaultSettings
	if !json.Valid(data) {
		return s, errors.New("not valid json")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return defaultSettings, err
	}
	s.normalize()
	return s, nil
}

// loadConfig reads the settings file, keeping the defaults when it is missing or broken
func loadConfig() error {
	data, err := os.ReadFile(configFileLocation)
	if errors.Is(err, os.ErrNotExist) {
		lPrintln("No " + configFile + " yet, using default settings")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", configFile, err)
	}
	s, err := parseConfig(data)
	config.Lock()
	config.s = s
	config.Unlock()
	if err != nil {
		return fmt.Errorf("the content of %s is not valid settings: %w", configFile, err)
	}
	return nil
}

// writeConfigLocked saves config.s, the caller holds config's lock
func writeConfigLocked() error {
	data, err := json.MarshalIndent(config.s, "", "    ")
	if err != nil {
		return err
	}
	tmp := configFileLocation + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", configFile, err)
	}
	if err := os.Rename(tmp, configFileLocation); err != nil {
		return fmt.Errorf("write %s: %w", configFile, err)
	}
	config.written = data
	return nil
}

// saveConfig writes the current settings to disk
func saveConfig() error {
	config.Lock()
	defer config.Unlock()
	return writeConfigLocked()
}

// updateConfig changes the settings, saves them and notifies overlays
func updateConfig(f func(*settings)) error {
	config.Lock()
	oldPort := config.s.OverlayPort
	f(&config.s)
	config.s.normalize()
	newPort := config.s.OverlayPort
	err := writeConfigLocked()
	config.Unlock()

	bumpUpdateID()
	if oldPort != newPort {
		lPrintWarnf("overlay_port changed to %d, restart to apply it", newPort)
	}
	return err
}

// patchConfig applies a partial JSON object to the settings
func patchConfig(data []byte) error {
	var perr error
	err := updateConfig(func(s *settings) {
		c := *s
		if perr = json.Unmarshal(data, &c); perr == nil {
			*s = c
		}
	})
	if perr != nil {
		return fmt.Errorf("bad settings: %w", perr)
	}
	return err
}

// reloadConfig rereads the settings file after an outside change
func reloadConfig() {
	// read under the lock so a save of this process is never seen half written
	config.Lock()
	data, err := os.ReadFile(configFileLocation)
	if err != nil {
		config.Unlock()
		lPrintErr("Failed to reread "+configFile+":", err)
		return
	}
	if bytes.Equal(data, config.written) {
		config.Unlock()
		return
	}
	s, err := parseConfig(data)
	if err != nil {
		config.Unlock()
		lPrintErr("The content of "+configFile+" is not valid, keeping the old settings:", err)
		return
	}
	config.s = s
	config.written = data
	config.Unlock()

	lPrintln(configFile + " was modified, settings reloaded")
	bumpUpdateID()
}

// watchConfig reloads the settings file when another program edits it
func watchConfig(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			lPrintErr("Recovering from panic in watchConfig(), the error is:", err)
			lPrintErr("Error watching " + configFile + ", restarting the watcher")
			if sleepCtx(ctx, 2*time.Second) == nil {
				go watchConfig(ctx)
			}
		}
	}()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		lPrintErr("Failed to watch "+configFile+":", err)
		return
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(configFileLocation)); err != nil {
		lPrintErr("Failed to watch "+configFile+":", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(configFileLocation) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				reloadConfig()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			lPrintErr("Config watcher error:", err)
		}
	}
}
