package main

import (
	"fmt"
	"log"
	"os"

	"dailybriefing/internal/commands"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=X.Y.Z"
var Version = "0.0.0-dev"

var rootCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Daily briefing - research, write and email a daily briefing",
	Long: `Daily briefing loads a prompt template, asks the model to research and
write the day's briefing, cleans out tool narration, renders the markdown to
HTML and plain text, and emails it.

Commands:
  run        Generate and send one briefing now
  lambda     Run as an AWS Lambda handler (EventBridge schedule)
  serve      Run on a cron schedule with an HTTP API and /metrics
  check      Validate configuration and local resources
  preview    Render a briefing to files without sending

Configuration comes from environment variables (a .env file is loaded if
present) and optionally a config file passed with --config.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&commands.ConfigFile, "config", "", "Config file (yaml, toml or json)")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.LambdaCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.PreviewCmd)
}

func main() {
	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err == nil {
		log.Println("✅ .env file loaded")
	}

	commands.AppVersion = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
