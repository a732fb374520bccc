package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	address        string
	metricsAddress string
	promptsFile    string
)

var rootCmd = &cobra.Command{
	Use:   "transcriber-api",
	Short: "transcriber-api serves the audio transcription API.",
}

func init() {
	rootCmd.AddCommand(runCmd)
	addServerFlags(rootCmd.PersistentFlags())
}

// addServerFlags registers the flags that override the environment.
func addServerFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&address, "address", "a", "", "Address of the API server (overrides TRANSCRIBER_ADDRESS)")
	fs.StringVar(&metricsAddress, "metrics-address", "", "Address of the metrics server (overrides TRANSCRIBER_METRICS_ADDRESS)")
	fs.StringVarP(&promptsFile, "prompts", "p", "", "Path to a YAML file with prompt templates (overrides TRANSCRIBER_PROMPTS_FILE)")
}
