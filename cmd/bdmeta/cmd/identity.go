package cmd

import (
	"github.com/spf13/cobra"
)

// identityCmd represents the identity command
var identityCmd = &cobra.Command{
	Use:   "identity <source> <destination>",
	Short: "Decode a metadata file and write it back unchanged",
	Long: `Decode any supported metadata file and write it to destination.

The output is byte-identical to the input. Useful for checking that a file
is understood before editing it.

Example:
  bdmeta identity BDMV/PLAYLIST/00800.mpls out/00800.mpls`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadFile(args[0])
		if err != nil {
			return err
		}
		if err := save(args[1], f); err != nil {
			return err
		}
		cmd.Printf("Wrote %s file %s\n", f.Kind(), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identityCmd)
}
