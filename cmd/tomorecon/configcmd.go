package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tomorecon/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a default configuration file",
	Long:  `Writes the default configuration to the --config path as a starting point.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(config.Default(), cfgPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfgPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
