package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/bdmeta/pkg/mpls"
)

// clearUOMaskCmd represents the clear-uomask command
var clearUOMaskCmd = &cobra.Command{
	Use:   "clear-uomask <source> <destination>",
	Short: "Clear every user operation mask of a playlist",
	Long: `Clear the user operation mask table of the playlist and of every play
item, allowing every operation during playback.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPlaylist(args[0], args[1], (*mpls.Header).ClearUOMasks)
	},
}

// skipFirstPlaybackCmd represents the skip-firstplayback command
var skipFirstPlaybackCmd = &cobra.Command{
	Use:   "skip-firstplayback <source> <destination>",
	Short: "Allow skipping and seeking in a playlist",
	Long: `Clear the chapter search, time search, skip and forward/backward play
masks so warnings and trailers can be skipped.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPlaylist(args[0], args[1], (*mpls.Header).EnableNavigation)
	},
}

func editPlaylist(source, destination string, edit func(*mpls.Header)) error {
	h, err := loadPlaylist(source)
	if err != nil {
		return err
	}
	edit(h)
	return save(destination, h)
}

func init() {
	rootCmd.AddCommand(clearUOMaskCmd)
	rootCmd.AddCommand(skipFirstPlaybackCmd)
}
