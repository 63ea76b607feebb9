// Alert sound length
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/tcolgate/mp3"
)

var errNoSound = errors.New("no sound file")

// audioDuration returns the play time of a wav or mp3 file
func audioDuration(path string) (time.Duration, error) {
	if !fileExists(path) {
		return 0, errNoSound
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		d := wav.NewDecoder(f)
		if !d.IsValidFile() {
			return 0, fmt.Errorf("%s is not a valid wav file", filepath.Base(path))
		}
		return d.Duration()
	case ".mp3":
		return mp3Duration(f)
	default:
		return 0, fmt.Errorf("unsupported sound format: %s", filepath.Ext(path))
	}
}

// mp3Duration adds up the frame lengths of an mp3 stream
func mp3Duration(r io.Reader) (time.Duration, error) {
	d := mp3.NewDecoder(r)
	var (
		f       mp3.Frame
		skipped int
		total   time.Duration
	)
	for {
		if err := d.Decode(&f, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, err
		}
		total += f.Duration()
	}
	if total == 0 {
		return 0, errors.New("no mp3 frames found")
	}
	return total, nil
}
