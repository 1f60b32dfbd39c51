package cmd

import (
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Put back a file replaced by an earlier edit",
	Long: `Write the contents saved under backup-id back to the path it was taken
from, or to --to. The backup id is logged whenever a file is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return err
		}
		journal, err := container.GetJournal()
		if err != nil {
			return err
		}
		b, err := journal.Get(id)
		if err != nil {
			return err
		}
		to, _ := cmd.Flags().GetString("to")
		if to == "" {
			to = b.Path
		}
		files, err := container.GetFiles()
		if err != nil {
			return err
		}
		if err := files.WriteBytes(to, b.Data, true); err != nil {
			return err
		}
		cmd.Printf("Restored %s from backup taken %s\n", to, b.Captured.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().String("to", "", "Restore to this path instead of the original")
}
