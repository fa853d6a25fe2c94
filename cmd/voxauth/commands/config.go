package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxauth/voxauth/cmd/voxauth/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file populated with the defaults",
	Long: `Write a starter configuration file with every setting at its default,
ready to edit. The target is --config, then $VOXAUTH_CONFIG, then the
OS config directory. An existing file is left alone unless --force is
given.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			path = os.Getenv("VOXAUTH_CONFIG")
		}
		if path == "" {
			path = config.DefaultPath()
		}
		if path == "" {
			return errors.New("cannot determine a config path, pass --config")
		}

		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		verdict(true, fmt.Sprintf("Wrote %s", path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
