/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/bdmeta/pkg/bdmv"
	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/config"
	"github.com/ssargent/bdmeta/pkg/di"
	"github.com/ssargent/bdmeta/pkg/mpls"
)

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bdmeta",
	Short: "bdmeta - Blu-ray metadata editor",
	Long: `bdmeta reads and rewrites the metadata files of a BDMV directory:
playlists (*.mpls), clip information (*.clpi), MovieObject.bdmv and
index.bdmv.

Edits never replace an existing file unless --overwrite is given or set in
the config file. Replaced files are kept in a backup journal and can be
put back with "bdmeta restore".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		cfg, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("overwrite") {
			cfg.Overwrite, _ = cmd.Flags().GetBool("overwrite")
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Logging.Level = "debug"
		}
		return container.Configure(cfg, cmd.ErrOrStderr())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return container.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if container != nil {
		// PersistentPostRunE is skipped when a command fails.
		_ = container.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/bdmeta/config.yaml)")
	rootCmd.PersistentFlags().Bool("overwrite", false, "Replace existing destination files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func loadBytes(path string) ([]byte, error) {
	files, err := container.GetFiles()
	if err != nil {
		return nil, err
	}
	return files.Load(path)
}

func loadFile(path string) (bdmv.File, error) {
	data, err := loadBytes(path)
	if err != nil {
		return nil, err
	}
	return bdmv.Decode(data)
}

func loadPlaylist(path string) (*mpls.Header, error) {
	data, err := loadBytes(path)
	if err != nil {
		return nil, err
	}
	return mpls.Decode(data)
}

// save recomputes rec and writes it, honouring the overwrite setting.
func save(path string, rec codec.Record) error {
	files, err := container.GetFiles()
	if err != nil {
		return err
	}
	return files.Save(path, rec, container.GetConfig().Overwrite)
}

func writeBytes(path string, data []byte) error {
	files, err := container.GetFiles()
	if err != nil {
		return err
	}
	return files.WriteBytes(path, data, container.GetConfig().Overwrite)
}
