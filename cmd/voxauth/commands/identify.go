package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <recording.wav>",
	Short: "Identify the speaker in a recording",
	Long: `Match a recording against every enrolled voice.

The result is one of: an enrolled name (high or low confidence), an
unknown speaker, no discernible voice, or an empty catalog.`,
	Args: cobra.ExactArgs(1),
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

		result, err := svc.Identify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if outputJSON {
			return emitJSON(result)
		}

		verdict(result.Identified, result.Name)
		kv("Outcome", "%s", result.TierName)
		kv("Confidence", "%.2f%%", result.Confidence)
		kv("Threshold", "%.2f%%", result.Threshold)
		if verbose {
			for _, s := range result.Scores {
				fmt.Println(styleDim.Render(fmt.Sprintf(
					"    %-20s avg %6.2f%%  max %6.2f%%  (%d samples)",
					s.Name, s.AvgScore*100, s.MaxScore*100, s.NumSamples)))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}
