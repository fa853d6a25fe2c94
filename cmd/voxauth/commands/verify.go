package commands

import (
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <name> <recording.wav>",
	Short: "Verify a recording against a claimed identity",
	Args:  cobra.ExactArgs(2),
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

		result, err := svc.Verify(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if outputJSON {
			return emitJSON(result)
		}

		verdict(result.Verified, result.Message)
		kv("Confidence", "%.2f%%", result.Confidence)
		kv("Best sample", "%.2f%%", result.MaxConfidence)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
