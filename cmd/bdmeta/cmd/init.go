/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/bdmeta/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default bdmeta config file",
	Long: `Write the default configuration to the --config path.

Examples:
	  bdmeta init
	  bdmeta init --backup-dir=/var/backups/bdmeta --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		backupDir, _ := cmd.Flags().GetString("backup-dir")
		force, _ := cmd.Flags().GetBool("force")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Config already exists at %s. Use --force to replace it.\n", configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(configPath, backupDir)
		if err != nil {
			return err
		}
		cmd.Printf("Wrote config %s\n", configPath)
		cmd.Printf("Backups: %s\n", cfg.Backup.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("backup-dir", "", "Backup journal directory (default ~/.config/bdmeta/backups)")
	initCmd.Flags().Bool("force", false, "Replace an existing config file")
}
