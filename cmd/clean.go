package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/output"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove leftover temporary stream files from the output directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		if err := utils.CleanLocal(settings.OutputDir); err != nil {
			output.PrintError("Error cleaning up temporary files")
			os.Exit(1)
		}
		output.PrintSuccess("Temporary files cleaned up")
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
