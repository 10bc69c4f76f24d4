package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/bilibili"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/media"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/output"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

var showQualities bool

var partsCmd = &cobra.Command{
	Use:   "parts [url]",
	Short: "List the parts of a video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		client := bilibili.NewClient(utils.HTTPClientConfig{
			Timeout:  time.Minute,
			SessData: settings.SessData,
		}, settings.OutputDir)

		videoID, err := media.ExtractVideoID(args[0])
		if err != nil {
			output.PrintError("Invalid bilibili URL or video id")
			os.Exit(1)
		}
		ctx := context.Background()
		video, err := bilibili.FetchVideo(ctx, client.HTTP(), videoID)
		if err != nil {
			output.PrintError("Failed to fetch video metadata: " + err.Error())
			os.Exit(1)
		}
		output.PrintHeader(fmt.Sprintf("  %s (%s)", video.Title, video.ID))
		for _, p := range video.Parts {
			fmt.Printf("  P%-3d %s  [%d:%02d]\n", p.Ordinal, p.Title, p.Duration/60, p.Duration%60)
		}
		if !showQualities || len(video.Parts) == 0 {
			return
		}
		videoQ, audioQ, err := bilibili.AvailableQualities(ctx, client.HTTP(), video.ID, video.Parts[0].Cid)
		if err != nil {
			output.PrintError("Failed to fetch quality list: " + err.Error())
			os.Exit(1)
		}
		output.PrintInfo("  Video qualities:")
		for _, q := range videoQ {
			fmt.Printf("    %-4d %s\n", q, media.VideoQualityLabel(q))
		}
		output.PrintInfo("  Audio qualities:")
		for _, q := range audioQ {
			fmt.Printf("    %-6d %s\n", q, media.AudioQualityLabel(q))
		}
	},
}

func init() {
	partsCmd.Flags().BoolVarP(&showQualities, "qualities", "q", false, "Also list available stream qualities")
	rootCmd.AddCommand(partsCmd)
}
