package bilibili

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/backend"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/progress"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

// Client implements backend.Capability against the bilibili API: DASH
// video+audio stream fetch followed by an ffmpeg merge, with progress
// events published on the Events channel.
type Client struct {
	http             *utils.HTTPClient
	outputDir        string
	renameOnConflict bool
	events           chan progress.Entry
	mu               sync.Mutex
	cancels          map[string]context.CancelFunc
	log              zerolog.Logger
}

var _ backend.Capability = (*Client)(nil)

func NewClient(cfg utils.HTTPClientConfig, outputDir string) *Client {
	if cfg.Referer == "" {
		cfg.Referer = "https://www.bilibili.com"
	}
	return &Client{
		http:      utils.NewHTTPClient(cfg),
		outputDir: outputDir,
		events:    make(chan progress.Entry, 64),
		cancels:   make(map[string]context.CancelFunc),
		log:       utils.GetLogger("bilibili"),
	}
}

func (c *Client) Events() <-chan progress.Entry {
	return c.events
}

// HTTP exposes the underlying client for metadata calls.
func (c *Client) HTTP() utils.HTTPDoer {
	return c.http
}

// SetRenameOnConflict switches the existing-file check from a hard
// failure to picking the next free indexed output name.
func (c *Client) SetRenameOnConflict(v bool) {
	c.renameOnConflict = v
}

// Cancel aborts the in-flight dispatch for the id, if any. Fire-and-forget;
// the acknowledgment travels back on the progress stream.
func (c *Client) Cancel(downloadID string) {
	c.mu.Lock()
	cancel := c.cancels[downloadID]
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// emit publishes without ever blocking the download path. The stream is
// not exactly-once; a dropped sample is recovered by the next one.
func (c *Client) emit(e progress.Entry) {
	select {
	case c.events <- e:
	default:
	}
}

func (c *Client) Dispatch(ctx context.Context, opts backend.DispatchOptions) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancels[opts.DownloadID] = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		c.mu.Lock()
		delete(c.cancels, opts.DownloadID)
		c.mu.Unlock()
	}()

	outputPath, err := c.run(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			c.emit(progress.Entry{DownloadID: opts.DownloadID, ParentID: opts.ParentID, Cancelled: true})
			return "", errors.New("ERR::CANCELLED")
		}
		return "", err
	}
	return outputPath, nil
}

func (c *Client) run(ctx context.Context, opts backend.DispatchOptions) (string, error) {
	start := time.Now()
	internalID := uuid.New().String()
	c.log.Info().Str("downloadId", opts.DownloadID).Int64("cid", opts.PartID).Msg("Starting part download")

	info, err := fetchPlayInfo(ctx, c.http, opts.SourceID, opts.PartID, opts.VideoQuality, opts.AudioQuality)
	if err != nil {
		return "", err
	}
	if info.VideoQuality != opts.VideoQuality {
		c.emit(progress.Entry{
			DownloadID: opts.DownloadID, ParentID: opts.ParentID, InternalID: internalID,
			Stage: progress.StageWarnVideoQuality, Percentage: 100,
		})
	}
	if info.AudioURL != "" && info.AudioQuality != opts.AudioQuality {
		c.emit(progress.Entry{
			DownloadID: opts.DownloadID, ParentID: opts.ParentID, InternalID: internalID,
			Stage: progress.StageWarnAudioQuality, Percentage: 100,
		})
	}

	outputPath := filepath.Join(c.outputDir, opts.OutputName+".mp4")
	if _, err := os.Stat(outputPath); err == nil {
		if !c.renameOnConflict {
			return "", errors.New("ERR::FILE_EXISTS")
		}
		outputPath = utils.RenewOutputPath(outputPath)
	}
	tempDir := filepath.Join(c.outputDir, utils.TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", mapWriteError(err)
	}
	videoPath := filepath.Join(tempDir, opts.DownloadID+".video.m4s")
	audioPath := filepath.Join(tempDir, opts.DownloadID+".audio.m4s")

	if err := c.downloadStream(ctx, opts, internalID, progress.StageVideo, info.VideoURL, videoPath, start); err != nil {
		return "", err
	}
	if info.AudioURL != "" {
		if err := c.downloadStream(ctx, opts, internalID, progress.StageAudio, info.AudioURL, audioPath, start); err != nil {
			return "", err
		}
	} else {
		audioPath = ""
	}

	c.emit(progress.Entry{
		DownloadID: opts.DownloadID, ParentID: opts.ParentID, InternalID: internalID,
		Stage: progress.StageMerge, ElapsedTime: time.Since(start).Seconds(),
	})
	if err := c.mergeStreams(ctx, videoPath, audioPath, outputPath); err != nil {
		return "", err
	}
	c.emit(progress.Entry{
		DownloadID: opts.DownloadID, ParentID: opts.ParentID, InternalID: internalID,
		Stage: progress.StageMerge, Percentage: 100, IsComplete: true,
		ElapsedTime: time.Since(start).Seconds(),
	})

	os.Remove(videoPath)
	if audioPath != "" {
		os.Remove(audioPath)
	}

	c.emit(progress.Entry{
		DownloadID: opts.DownloadID, ParentID: opts.ParentID, InternalID: internalID,
		Stage: progress.StageComplete, Percentage: 100, IsComplete: true,
		OutputPath: outputPath, Title: opts.OutputName,
		ElapsedTime: time.Since(start).Seconds(),
	})
	c.log.Info().Str("downloadId", opts.DownloadID).Str("output", outputPath).Msg("Part download completed")
	return outputPath, nil
}

func mapWriteError(err error) error {
	if isNoSpace(err) {
		return errors.New("ERR::DISK_FULL")
	}
	return fmt.Errorf("write failed: %v", err)
}
