package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/bilibili"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/media"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/orchestrator"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/output"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/progress"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/queue"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

var (
	partSelection string
	videoQuality  int
	audioQuality  int
	renewOutput   bool
)

var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Download a video's selected parts and merge them with ffmpeg",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		if videoQuality == 0 {
			videoQuality = settings.VideoQuality
		}
		if audioQuality == 0 {
			audioQuality = settings.AudioQuality
		}
		if _, err := bilibili.EnsureFFmpeg(); err != nil {
			output.PrintError(err.Error())
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := bilibili.NewClient(utils.HTTPClientConfig{
			Timeout:  3 * time.Minute,
			SessData: settings.SessData,
		}, settings.OutputDir)
		client.SetRenameOnConflict(renewOutput)

		videoID, err := media.ExtractVideoID(args[0])
		if err != nil {
			output.PrintError("Invalid bilibili URL or video id")
			os.Exit(1)
		}
		video, err := bilibili.FetchVideo(ctx, client.HTTP(), videoID)
		if err != nil {
			output.PrintError("Failed to fetch video metadata: " + err.Error())
			os.Exit(1)
		}
		selected, err := parseSelection(partSelection, len(video.Parts))
		if err != nil {
			output.PrintError(err.Error())
			os.Exit(1)
		}
		for i := range video.Parts {
			video.Parts[i].Selected = selected[video.Parts[i].Ordinal]
			video.Parts[i].VideoQuality = videoQuality
			video.Parts[i].AudioQuality = audioQuality
		}

		queueStore := queue.NewStore()
		progressStore := progress.NewStore()
		bridge := progress.NewBridge(progressStore, queueStore)
		go bridge.Run(ctx, client.Events())

		orch := orchestrator.New(client, queueStore, progressStore, settings.Language)
		orch.SetNotify(output.PrintWarning)

		output.PrintHeader("  " + video.Title)
		display := output.NewDisplay(queueStore, progressStore)
		display.StartDisplay()
		err = orch.Download(ctx, orchestrator.Request{
			URL:   args[0],
			Title: video.Title,
			Parts: video.Parts,
		})
		// Let in-flight events drain before the final render.
		time.Sleep(500 * time.Millisecond)
		display.StopDisplay()
		if err != nil {
			os.Exit(1)
		}
	},
}

// parseSelection expands "1,3-5" into the set of part ordinals. An empty
// selection means all parts.
func parseSelection(expr string, numParts int) (map[int]bool, error) {
	selected := make(map[int]bool)
	if strings.TrimSpace(expr) == "" {
		for i := 1; i <= numParts; i++ {
			selected[i] = true
		}
		return selected, nil
	}
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		lo, hi, found := strings.Cut(token, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid part selection %q", token)
		}
		end := start
		if found {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid part selection %q", token)
			}
		}
		if start < 1 || end > numParts || start > end {
			return nil, fmt.Errorf("part selection %q out of range 1-%d", token, numParts)
		}
		for i := start; i <= end; i++ {
			selected[i] = true
		}
	}
	return selected, nil
}

func init() {
	getCmd.Flags().StringVarP(&partSelection, "parts", "p", "", "Parts to download, e.g. '1,3-5' (default all)")
	getCmd.Flags().IntVar(&videoQuality, "video-quality", 0, "Video quality id (e.g. 80 for 1080P)")
	getCmd.Flags().IntVar(&audioQuality, "audio-quality", 0, "Audio quality id (e.g. 30280 for 192K)")
	getCmd.Flags().BoolVar(&renewOutput, "renew", false, "Pick an indexed output name instead of failing when the file exists")
	rootCmd.AddCommand(getCmd)
}
