package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/bdmeta/pkg/mpls"
)

// fixExtAddressCmd represents the fix-ext-address command
var fixExtAddressCmd = &cobra.Command{
	Use:   "fix-ext-address <source> <destination>",
	Short: "Repair a wrong extension data start address in a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := loadBytes(args[0])
		if err != nil {
			return err
		}
		if _, err := mpls.Decode(data); err == nil {
			cmd.Println("[OK] The playlist does not seem to contain errors.")
			return nil
		}

		fixed, changed, err := mpls.FixExtensionDataAddress(data)
		if err != nil {
			return err
		}
		if _, err := mpls.Decode(fixed); err != nil {
			cmd.Println("[FAILED] The playlist seems to have other errors.")
			return err
		}
		if !changed {
			return fmt.Errorf("playlist does not decode but its extension address is consistent")
		}
		if err := writeBytes(args[1], fixed); err != nil {
			return err
		}
		cmd.Println("[OK] The extension address has been fixed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixExtAddressCmd)
}
