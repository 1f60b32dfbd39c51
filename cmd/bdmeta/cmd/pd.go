package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkPDCmd represents the check-pd command
var checkPDCmd = &cobra.Command{
	Use:   "check-pd <source>",
	Short: "Check plug-in disc constraints of a playlist",
	Long: `Check the synchronized sub-paths used by plug-in discs. With
--destination, sub-clip references of PG streams are reset and the playlist
is saved there.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		destination, _ := cmd.Flags().GetString("destination")

		h, err := loadPlaylist(args[0])
		if err != nil {
			return err
		}
		if destination == "" {
			issues, err := h.CheckPD()
			if err != nil {
				return err
			}
			for _, issue := range issues {
				cmd.Println(issue.String())
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d plug-in disc issues", len(issues))
			}
			cmd.Println("[OK] No plug-in disc issues found.")
			return nil
		}

		remaining, err := h.FixPD()
		if err != nil {
			return err
		}
		for _, issue := range remaining {
			cmd.Println(issue.String())
		}
		if len(remaining) > 0 {
			return fmt.Errorf("%d plug-in disc issues cannot be fixed", len(remaining))
		}
		return save(destination, h)
	},
}

func init() {
	rootCmd.AddCommand(checkPDCmd)
	checkPDCmd.Flags().StringP("destination", "d", "", "Save the fixed playlist here")
}
