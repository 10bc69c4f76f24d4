package bilibili

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/backend"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/progress"
)

const bufferSize = 1024 * 1024 // 1MB read buffer

const emitInterval = 500 * time.Millisecond

// downloadStream fetches one DASH stream to a temp file, publishing
// per-stage progress samples while it reads.
func (c *Client) downloadStream(ctx context.Context, opts backend.DispatchOptions, internalID, stage, streamURL, outputPath string, start time.Time) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return mapWriteError(err)
	}
	outFile, err := os.Create(outputPath)
	if err != nil {
		return mapWriteError(err)
	}
	defer outFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("ERR::NETWORK::%v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.New("ERR::CANCELLED")
		}
		return fmt.Errorf("ERR::NETWORK::%v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("ERR::NETWORK::unexpected status code %d", resp.StatusCode)
	}
	var totalSize int64 = -1
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if parsed, err := strconv.ParseInt(cl, 10, 64); err == nil {
			totalSize = parsed
		}
	}
	c.log.Debug().Str("downloadId", opts.DownloadID).Str("stage", stage).Int64("size", totalSize).Msg("Starting stream download")

	buffer := make([]byte, bufferSize)
	var downloaded int64
	lastEmit := time.Now()
	lastBytes := int64(0)
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				return mapWriteError(writeErr)
			}
			downloaded += int64(bytesRead)
			if now := time.Now(); now.Sub(lastEmit) >= emitInterval {
				rate := int64(float64(downloaded-lastBytes) / now.Sub(lastEmit).Seconds())
				lastEmit = now
				lastBytes = downloaded
				c.emit(c.stageEntry(opts, internalID, stage, totalSize, downloaded, rate, start, false))
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			if ctx.Err() != nil {
				return errors.New("ERR::CANCELLED")
			}
			return fmt.Errorf("ERR::NETWORK::%v", readErr)
		}
	}
	c.emit(c.stageEntry(opts, internalID, stage, totalSize, downloaded, 0, start, true))
	return nil
}

func (c *Client) stageEntry(opts backend.DispatchOptions, internalID, stage string, totalSize, downloaded, rate int64, start time.Time, complete bool) progress.Entry {
	percentage := 0.0
	if totalSize > 0 {
		percentage = float64(downloaded) / float64(totalSize) * 100
	}
	if complete {
		percentage = 100
	}
	filesize := totalSize
	if filesize < 0 {
		filesize = 0
	}
	return progress.Entry{
		DownloadID:   opts.DownloadID,
		ParentID:     opts.ParentID,
		InternalID:   internalID,
		Stage:        stage,
		Filesize:     filesize,
		Downloaded:   downloaded,
		TransferRate: rate,
		Percentage:   percentage,
		ElapsedTime:  time.Since(start).Seconds(),
		IsComplete:   complete,
	}
}

func isNoSpace(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
