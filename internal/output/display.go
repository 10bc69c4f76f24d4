package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/progress"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/queue"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

// Display renders the queue and progress stores on a ticker. It is a pure
// reader; all state lives in the stores.
type Display struct {
	queue       *queue.Store
	progress    *progress.Store
	numLines    int
	displayTick time.Duration
	doneCh      chan struct{}
	displayWg   sync.WaitGroup
}

func NewDisplay(q *queue.Store, p *progress.Store) *Display {
	return &Display{
		queue:       q,
		progress:    p,
		displayTick: 300 * time.Millisecond,
		doneCh:      make(chan struct{}),
	}
}

func (d *Display) StartDisplay() {
	// Log lines would corrupt the in-place redraw; silence them while the
	// display owns the terminal.
	utils.SetLogOutput(io.Discard)
	d.displayWg.Add(1)
	go func() {
		defer d.displayWg.Done()
		ticker := time.NewTicker(d.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.render()
			case <-d.doneCh:
				d.render()
				return
			}
		}
	}()
}

func (d *Display) StopDisplay() {
	close(d.doneCh)
	d.displayWg.Wait()
	utils.SetLogOutput(os.Stderr)
	d.ShowSummary()
}

func statusIndicator(status queue.Status) string {
	switch status {
	case queue.StatusDone:
		return successStyle.Render(StyleSymbols["pass"])
	case queue.StatusError:
		return errorStyle.Render(StyleSymbols["fail"])
	case queue.StatusCancelling, queue.StatusCancelled:
		return warningStyle.Render(StyleSymbols["warning"])
	case queue.StatusPending:
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func (d *Display) render() {
	_, termHeight, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termHeight <= 0 {
		termHeight = 24
	}
	availableLines := termHeight - 3

	if d.numLines > 0 {
		fmt.Printf("\033[%dA\033[J", d.numLines)
	}
	lineCount := 0
	for _, item := range d.queue.Items() {
		if lineCount >= availableLines {
			break
		}
		if item.ParentID == "" {
			ratio := d.progress.AggregateParent(item.DownloadID)
			bar := ProgressBar(int64(ratio*1000), 1000, 30)
			fmt.Printf("  %s %s %s\n", statusIndicator(item.Status), headerStyle.Render(item.Title), bar)
		} else {
			fmt.Printf("  %s %s %s\n", statusIndicator(item.Status), item.Title, d.childLine(item))
		}
		lineCount++
	}
	d.numLines = lineCount
}

func (d *Display) childLine(item queue.Item) string {
	if item.Status == queue.StatusError {
		return errorStyle.Render(item.ErrorMessage)
	}
	stage := d.progress.LatestStage(item.DownloadID)
	if stage == "" {
		return pendingStyle.Render("Waiting...")
	}
	for _, e := range d.progress.EntriesFor(item.DownloadID) {
		if e.Stage != stage {
			continue
		}
		if e.Filesize > 0 {
			return fmt.Sprintf("%s %s %s/%s %s",
				debugStyle.Render(stage),
				ProgressBar(e.Downloaded, e.Filesize, 30),
				utils.FormatBytes(uint64(e.Downloaded)),
				utils.FormatBytes(uint64(e.Filesize)),
				debugStyle.Render(utils.FormatSpeed(e.TransferRate, 1)))
		}
		return debugStyle.Render(stage)
	}
	return debugStyle.Render(stage)
}

func ProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	if total <= 0 {
		total = 1
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	percent := float64(current) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(fmt.Sprintf("%s %.1f%%", bar, percent*100))
}

func (d *Display) ShowSummary() {
	fmt.Println()
	var done, failed, cancelled int
	for _, item := range d.queue.Items() {
		if item.ParentID == "" {
			continue
		}
		switch item.Status {
		case queue.StatusDone:
			done++
		case queue.StatusError:
			failed++
		case queue.StatusCancelled:
			cancelled++
		}
	}
	PrintSuccess(fmt.Sprintf("  Completed %d part(s)", done))
	if cancelled > 0 {
		PrintWarning(fmt.Sprintf("  Cancelled %d part(s)", cancelled))
	}
	if failed > 0 {
		PrintError(fmt.Sprintf("  Failed %d part(s)", failed))
		for _, item := range d.queue.Items() {
			if item.Status == queue.StatusError && item.ParentID != "" {
				fmt.Printf("    %s %s\n", errorStyle.Render(item.Title+":"), errorStyle.Render(item.ErrorMessage))
			}
		}
	}
	fmt.Println()
}
