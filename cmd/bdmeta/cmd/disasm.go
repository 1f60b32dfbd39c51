package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/bdmeta/pkg/mobj"
)

// disasmCmd represents the disasm command
var disasmCmd = &cobra.Command{
	Use:   "disasm <MovieObject.bdmv>",
	Short: "Disassemble the navigation commands of every movie object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := loadBytes(args[0])
		if err != nil {
			return err
		}
		h, err := mobj.Decode(data)
		if err != nil {
			return err
		}
		for i, obj := range h.MovieObjects.Mobjs {
			cmd.Printf("mobj %d: resume=%d menu_call_mask=%d title_search_mask=%d\n",
				i, obj.ResumeIntentionFlag, obj.MenuCallMask, obj.TitleSearchMask)
			for j, nc := range obj.NavigationCommands {
				line, err := mobj.Disassemble(nc)
				if err != nil {
					return fmt.Errorf("mobj %d command %d: %w", i, j, err)
				}
				cmd.Printf("  %4d  %s\n", j, line)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}
