package service

import (
	"bitwise74/emotube/config"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrFFmpegTimeout = errors.New("ffmpeg timed out")

// waitDelay bounds how long a killed run may keep its output pipes open
const waitDelay = 2 * time.Second

// FFmpeg runs ffmpeg and ffprobe as external processes. Every run is bounded
// by Timeout. When it expires the whole process group is killed, so wrapper
// scripts can't keep a run alive through their children.
type FFmpeg struct {
	Path        string
	FFprobePath string
	Timeout     time.Duration
}

func NewFFmpeg(c config.FFmpeg) *FFmpeg {
	return &FFmpeg{
		Path:        c.Path,
		FFprobePath: c.FFprobePath,
		Timeout:     c.Timeout,
	}
}

func (f *FFmpeg) run(ctx context.Context, bin string, stdout io.Writer, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	killGroup(cmd)
	cmd.WaitDelay = waitDelay

	zap.L().Debug("Running command", zap.String("cmd", cmd.String()))

	stderrBuf := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderrBuf

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrFFmpegTimeout, f.Timeout)
		}

		return fmt.Errorf("%s failed, %w (%s)", bin, err, strings.TrimSpace(stderrBuf.String()))
	}

	return nil
}

// Run executes ffmpeg with args and writes its standard output to stdout
func (f *FFmpeg) Run(ctx context.Context, stdout io.Writer, args ...string) error {
	return f.run(ctx, f.Path, stdout, args...)
}

// Probe returns the container duration in seconds
func (f *FFmpeg) Probe(ctx context.Context, p string) (d float64, err error) {
	zap.L().Debug("Running FFprobe to determine video duration")

	var stdOut bytes.Buffer

	err = f.run(ctx, f.FFprobePath, &stdOut, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "-i", p)
	if err != nil {
		return 0, err
	}

	durStr := strings.TrimSpace(stdOut.String())
	d, err = strconv.ParseFloat(durStr, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed duration: %w (%s)", err, durStr)
	}

	return d, nil
}
