package bilibili

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// EnsureFFmpeg locates ffmpeg in PATH or next to the executable.
func EnsureFFmpeg() (string, error) {
	path, err := exec.LookPath("ffmpeg")
	if err == nil {
		return path, nil
	}
	execPath, err := os.Executable()
	if err == nil {
		ffmpegPath := filepath.Join(filepath.Dir(execPath), "ffmpeg")
		if runtime.GOOS == "windows" {
			ffmpegPath += ".exe"
		}
		if _, err := os.Stat(ffmpegPath); err == nil {
			return ffmpegPath, nil
		}
	}
	return "", errors.New("ffmpeg not found in PATH, please install manually")
}

// mergeStreams muxes the fetched streams into the final container without
// re-encoding. The merge process is not interruptible once started except
// through context cancellation of the whole dispatch.
func (c *Client) mergeStreams(ctx context.Context, videoPath, audioPath, outputPath string) error {
	ffmpegPath, err := EnsureFFmpeg()
	if err != nil {
		c.log.Error().Err(err).Msg("ffmpeg unavailable")
		return errors.New("ERR::MERGE_FAILED")
	}
	args := []string{"-y", "-i", videoPath}
	if audioPath != "" {
		args = append(args, "-i", audioPath)
	}
	args = append(args, "-c", "copy", outputPath)
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	c.log.Debug().Msgf("Executing ffmpeg command: %s", cmd.String())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.New("ERR::MERGE_FAILED")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.New("ERR::MERGE_FAILED")
	}
	if err := cmd.Start(); err != nil {
		c.log.Error().Err(err).Msg("Error starting ffmpeg")
		return errors.New("ERR::MERGE_FAILED")
	}
	go c.logStream(stdout)
	go c.logStream(stderr)
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return errors.New("ERR::CANCELLED")
		}
		c.log.Error().Err(err).Msg("ffmpeg command failed")
		return errors.New("ERR::MERGE_FAILED")
	}
	return nil
}

func (c *Client) logStream(reader io.Reader) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			c.log.Debug().Msg(line)
		}
	}
}
