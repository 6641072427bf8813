// Package util holds small helpers that don't belong to any other package
package util

import (
	"fmt"
	"os"
	"time"
)

// containerMarkers are files container runtimes drop into the root fs
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

// InContainer reports whether the process runs inside a Docker or Podman
// container
func InContainer() bool {
	for _, p := range containerMarkers {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}

	return false
}

// SeekTimestamp formats seconds as HH:MM:SS.mmm for ffmpeg's -ss flag.
// Negative values clamp to the start of the stream.
func SeekTimestamp(seconds float64) string {
	d := time.Duration(max(seconds, 0) * float64(time.Second)).Round(time.Millisecond)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second

	return fmt.Sprintf("%02d:%02d:%02d.%03d", int64(h), int64(m), int64(s), int64(d/time.Millisecond))
}
