package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List enrolled speakers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		users, err := svc.Users(cmd.Context())
		if err != nil {
			return err
		}
		if outputJSON {
			return emitJSON(users)
		}

		if len(users) == 0 {
			fmt.Println(styleDim.Render("no users registered"))
			return nil
		}
		fmt.Printf("%s\n", styleLabel.Render(fmt.Sprintf(
			"%-20s %8s %12s %s", "NAME", "SAMPLES", "QUALITY", "REGISTERED")))
		for _, u := range users {
			quality := fmt.Sprintf("%.2f", u.AvgInterSimilarity)
			if u.LowQuality {
				quality = styleWarn.Render(quality + " !")
			}
			fmt.Printf("%-20s %8d %12s %s\n",
				u.Name, u.NumSamples, quality, u.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an enrolled speaker",
	Args:  cobra.ExactArgs(1),
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

		if err := svc.DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		verdict(true, fmt.Sprintf("Deleted %q", args[0]))
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}
