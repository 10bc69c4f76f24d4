package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/config"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

var (
	configPath string
	outputDir  string
	sessData   string
	language   string
	debug      bool
)

var BbdlVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "bbdl",
	Short:   "bbdl is a bilibili multi-part video downloader",
	Version: BbdlVersion,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings merges the config file with any flags set on this run.
func loadSettings() config.Settings {
	settings, err := config.Load(configPath)
	if err != nil {
		logger := utils.GetLogger("config")
		logger.Warn().Err(err).Msg("Falling back to default settings")
	}
	if outputDir != "" {
		settings.OutputDir = outputDir
	}
	if sessData != "" {
		settings.SessData = sessData
	}
	if language != "" {
		settings.Language = language
	}
	return settings
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to settings file (default ~/.bbdl.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Output directory for merged videos")
	rootCmd.PersistentFlags().StringVar(&sessData, "sessdata", "", "SESSDATA cookie for member-only qualities")
	rootCmd.PersistentFlags().StringVar(&language, "language", "", "Message language (en, ja)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
