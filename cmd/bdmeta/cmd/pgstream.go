package cmd

import (
	"github.com/spf13/cobra"
)

// addPGStreamCmd represents the add-pgstream command
var addPGStreamCmd = &cobra.Command{
	Use:   "add-pgstream <source> <destination> <clip>...",
	Short: "Add a subtitle stream to play items",
	Long: `Append a presentation graphics stream to the STN table of the play item
for each clip. The stream PID follows the last PG stream of the play item,
or is the configured base PID when it has none.

Example:
  bdmeta add-pgstream 00800.mpls out/00800.mpls 00001 00002 --language jpn`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.GetConfig()
		language, _ := cmd.Flags().GetString("language")
		if language == "" {
			language = cfg.Subtitle.Language
		}

		h, err := loadPlaylist(args[0])
		if err != nil {
			return err
		}
		for _, clip := range args[2:] {
			sp, err := h.AddPGStream(clip, language, cfg.Subtitle.BasePID)
			if err != nil {
				return err
			}
			cmd.Printf("Added %s subtitle stream PID %#x to clip %s\n", language, sp.Entry.RefToStreamPID, clip)
		}
		return save(args[1], h)
	},
}

func init() {
	rootCmd.AddCommand(addPGStreamCmd)
	addPGStreamCmd.Flags().StringP("language", "l", "", "Subtitle language, three characters (default from config)")
}
