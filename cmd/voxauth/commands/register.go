package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxauth/voxauth/pkg/voiceid"
)

var registerCmd = &cobra.Command{
	Use:   "register <name> <sample.wav> [sample.wav ...]",
	Short: "Enroll a speaker from sample recordings",
	Long: fmt.Sprintf(`Enroll a speaker from %d to %d WAV recordings.

More samples make the profile more robust. Each recording should be a
few seconds of natural speech in a quiet environment.`,
		voiceid.MinEnrollSamples, voiceid.MaxEnrollSamples),
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		svc, err := openService(cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		result, err := svc.Register(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		if outputJSON {
			return emitJSON(result)
		}

		verdict(true, fmt.Sprintf("Registered %q", result.Name))
		kv("Samples", "%d", result.NumSamples)
		kv("Avg inter-similarity", "%.4f", result.Quality.AvgInterSimilarity)
		kv("Recommended threshold", "%.2f", result.RecommendedThreshold)
		warnings(result.Warnings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
