// Package export writes mixed tracks to their output container.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"
)

// ErrEmptyTrack is returned when asked to export a nil or zero-length track;
// an empty output file is never silently produced.
var ErrEmptyTrack = errors.New("refusing to export empty track")

// Track writes the mixed track as a 16-bit stereo WAV file at the track's
// sample rate. Parent directories are created as needed and an existing file
// at path is overwritten.
func Track(track *beep.Buffer, path string) error {
	if track == nil || track.Len() == 0 {
		return ErrEmptyTrack
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := wav.Encode(f, track.Streamer(0, track.Len()), track.Format()); err != nil {
		f.Close()
		return fmt.Errorf("encode track: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path":     path,
		"duration": track.Format().SampleRate.D(track.Len()),
	}).Info("exported track")
	return nil
}
