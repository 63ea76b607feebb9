package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// Help message
const helpMsg = `starttrack: start tracking reposts, needs a saved login
stoptrack: stop tracking
login: open a browser window to log in
logout: delete the saved login
mute: do not play the alert sound
unmute: play the alert sound again
testalert: show a test alert on the overlay
stoptest: hide the test alert
preview: open the overlay in a small browser window
copyurl: copy the overlay URL to the clipboard
copylogs: copy the error log to the clipboard
status: show the tracker status
set key value: change a setting, for example set poll_interval 10
quit: exit the program
help: this help message`

// printErr tells the user how to get help
func printErr() {
	fmt.Println("Enter a valid command, enter help to list all commands")
}

// isStringSetting reports whether key names a text field of settings
func isStringSetting(key string) bool {
	t := reflect.TypeOf(settings{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == key {
			return f.Type.Kind() == reflect.String
		}
	}
	return false
}

// settingValue turns the text after "set key" into a JSON value.
// Text settings take the value as typed unless it is already quoted.
func settingValue(key, raw string) json.RawMessage {
	raw = strings.TrimSpace(raw)
	quoted := strings.HasPrefix(raw, `"`) && json.Valid([]byte(raw))
	if quoted || (!isStringSetting(key) && json.Valid([]byte(raw))) {
		return json.RawMessage(raw)
	}
	data, _ := json.Marshal(raw)
	return data
}

// splitSet splits "set key value" keeping spaces inside the value
func splitSet(line string) (key, value string) {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "set"))
	key, value, _ = strings.Cut(rest, " ")
	return key, strings.TrimSpace(value)
}

// setCmd changes one setting from the command line
func setCmd(key, value string) bool {
	data, err := json.Marshal(map[string]json.RawMessage{key: settingValue(key, value)})
	if err != nil {
		lPrintErr("Failed to encode the setting:", err)
		return false
	}
	if err := patchConfig(data); err != nil {
		lPrintErr("Failed to change "+key+":", err)
		return false
	}
	lPrintln("Setting " + key + " changed")
	return true
}

// handleInput reads commands from stdin
func handleInput() {
	defer func() {
		if err := recover(); err != nil {
			lPrintErr("Recovering from panic in handleInput(), the error is:", err)
			lPrintErr("Input handling failed")
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		cmd := strings.Fields(line)
		switch {
		case len(cmd) == 0:
		case cmd[0] == "help" && len(cmd) == 1:
			fmt.Println(helpMsg)
		case cmd[0] == "set" && len(cmd) >= 3:
			key, value := splitSet(line)
			setCmd(key, value)
		case len(cmd) == 1:
			s := handleCmd(cmd[0])
			if s == "" {
				printErr()
				break
			}
			if cmd[0] == "status" {
				fmt.Println(s)
			}
			if cmd[0] == "quit" {
				fmt.Println("Quitting, please wait...")
				return
			}
		default:
			printErr()
		}
	}
	if err := scanner.Err(); err != nil {
		lPrintErr("Reading standard input err:", err)
	}
}
