package commands

import (
	"github.com/spf13/cobra"

	"github.com/voxauth/voxauth/cmd/voxauth/internal/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "voxauth",
	Short: "Voice identification and verification service",
	Long: `voxauth - register, identify, and verify speakers by voice.

Speakers are enrolled from 1-5 short WAV recordings. Identification
matches an unknown recording against every enrolled voice; verification
checks a recording against one claimed identity.

Configuration is read from a YAML file:
  --config flag, then $VOXAUTH_CONFIG, then the OS config directory
  (e.g. ~/.config/voxauth/config.yaml on Linux).

Examples:
  # Enroll alice from three recordings
  voxauth register alice s1.wav s2.wav s3.wav

  # Who is speaking?
  voxauth identify probe.wav

  # Is this really bob?
  voxauth verify bob probe.wav

  # Run the HTTP API
  voxauth serve --listen :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "emit raw JSON instead of styled output")
}

// loadConfig loads the effective configuration for a command.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
