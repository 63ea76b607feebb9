// Rumble repost alerts for stream overlays
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/getlantern/systray"
	"github.com/gofrs/flock"
	"github.com/mattn/go-colorable"
	flag "github.com/spf13/pflag"
)

const appVersion = "1.0.0"

const lockFile = "repostalert.lock"

// Command line flags
var (
	configDirFlag = flag.StringP("config-dir", "c", "", "folder of the settings, history and saved login, defaults to the program folder")
	noGUIFlag     = flag.Bool("nogui", false, "no tray icon, read commands from the console")
	trackFlag     = flag.BoolP("track", "t", false, "start tracking right away when a login is saved")
	portFlag      = flag.IntP("port", "p", 0, "overlay port for this run, overrides overlay_port")
	versionFlag   = flag.BoolP("version", "v", false, "print the version")
)

// setupPaths picks the config folder and the file locations in it
func setupPaths() error {
	exePath, err := os.Executable()
	if err != nil {
		return err
	}
	exeDir = filepath.Dir(exePath)
	configDir = exeDir
	if *configDirFlag != "" {
		configDir = *configDirFlag
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", configDir, err)
	}
	configFileLocation = filepath.Join(configDir, configFile)
	cookiesFileLocation = filepath.Join(configDir, cookiesFile)
	logoFileLocation = filepath.Join(configDir, logoFile)
	return nil
}

// errAlreadyRunning means another instance holds the lock of the config folder
var errAlreadyRunning = errors.New("another instance is already running with these settings")

// lockConfigDir makes sure only one instance uses configDir
func lockConfigDir() (*flock.Flock, error) {
	lock := flock.New(filepath.Join(configDir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", lockFile, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w in %s", errAlreadyRunning, configDir)
	}
	return lock, nil
}

// initialize loads the settings, the logo, the history and the saved login
func initialize() error {
	if !fileExists(configFileLocation) {
		lPrintln("Creating the settings file " + configFile)
		if err := saveConfig(); err != nil {
			lPrintErr("Failed to create "+configFile+":", err)
		}
	} else if err := loadConfig(); err != nil {
		lPrintErr("Failed to load the settings, using the defaults:", err)
	}

	if !fileExists(logoFileLocation) {
		lPrintln("Downloading the Rumble logo")
		if err := fetchLogo(); err != nil {
			lPrintWarn("Failed to download the logo:", err)
		}
	}

	h, err := openHistory(getConfig().HistoryDriver, configDir)
	if err != nil {
		return fmt.Errorf("open repost history: %w", err)
	}
	history = h
	lPrintf("Loaded %d reposts from the history", history.Len())

	checkSessionStatus()
	return nil
}

// listenPort is the port given with --port, overlay_port otherwise
func listenPort() int {
	if p := *portFlag; p > 0 && p <= 65535 {
		return p
	}
	return getConfig().OverlayPort
}

// quitRun ends the program
func quitRun() {
	lPrintln("Quitting, please wait...")
	mainCancel()
	if !*isNoGUI {
		systray.Quit()
	}
}

// shutdown stops everything started by main
func shutdown() {
	if isTracking.Load() {
		stopTracking()
	}
	stopTestAlert()
	stopWebAPI()
	if history != nil {
		if err := history.Close(); err != nil {
			lPrintErr("Failed to close the repost history:", err)
		}
	}
	lPrintln("Bye")
}

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Println("repostalert " + appVersion)
		return
	}
	*isNoGUI = *noGUIFlag
	initLogger(colorable.NewColorableStdout())

	if err := setupPaths(); err != nil {
		lPrintErr("Initialization failed:", err)
		os.Exit(1)
	}

	lock, err := lockConfigDir()
	if err != nil {
		lPrintErr(err)
		os.Exit(1)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			lPrintErr("Failed to unlock "+lockFile+":", err)
		}
	}()

	if err := initialize(); err != nil {
		lPrintErr("Initialization failed:", err)
		_ = lock.Unlock()
		os.Exit(1)
	}

	if err := startWebAPI(listenPort()); err != nil {
		lPrintErr("Failed to start the web server:", err)
		return
	}
	defer shutdown()

	go runAlertQueue(mainCtx, alerts)
	go watchConfig(mainCtx)

	if *trackFlag {
		startTracking()
	}

	sigCtx, stop := signal.NotifyContext(mainCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		if !errors.Is(mainCtx.Err(), context.Canceled) {
			quitRun()
		}
	}()

	if *isNoGUI {
		fmt.Println("Enter commands to control the tracker, enter help to list all commands")
		go handleInput()
		<-mainCtx.Done()
		return
	}
	systray.Run(trayOnReady, trayOnExit)
	mainCancel()
}
