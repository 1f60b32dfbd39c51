package cmd

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/bdmeta/pkg/chapter"
)

// chaptersCmd represents the chapters command
var chaptersCmd = &cobra.Command{
	Use:   "chapters <source> <destination-dir>",
	Short: "Export playlist chapters as Matroska XML",
	Long: `Export the entry marks of a playlist as Matroska chapter files, one per
play item, named <playlist>_<clip>.xml. With --single the play items are
joined into <playlist>.xml. With --qpfile a <playlist>_<clip>.qpf keyframe
file is written next to each chapter file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		single, _ := cmd.Flags().GetBool("single")
		qpfile, _ := cmd.Flags().GetBool("qpfile")
		language, _ := cmd.Flags().GetString("language")
		if single && qpfile {
			return fmt.Errorf("a single qp file for multiple clips is not supported")
		}
		if language == "" {
			language = container.GetConfig().Chapter.Language
		}

		h, err := loadPlaylist(args[0])
		if err != nil {
			return err
		}
		lists, err := chapter.FromPlaylist(h)
		if err != nil {
			return err
		}
		for _, c := range lists {
			if err := c.SetLanguage(language); err != nil {
				return err
			}
		}

		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		if single {
			if len(lists) == 0 {
				return fmt.Errorf("playlist has no chapters")
			}
			return writeChapters(cmd, filepath.Join(args[1], name+".xml"), chapter.Join(lists).WriteXML)
		}
		for _, c := range lists {
			base := filepath.Join(args[1], name+"_"+c.Clip)
			if err := writeChapters(cmd, base+".xml", c.WriteXML); err != nil {
				return err
			}
			if qpfile {
				if err := writeChapters(cmd, base+".qpf", c.WriteQPFile); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func writeChapters(cmd *cobra.Command, path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := writeBytes(path, buf.Bytes()); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(chaptersCmd)
	chaptersCmd.Flags().BoolP("single", "s", false, "Join all play items into one chapter file")
	chaptersCmd.Flags().BoolP("qpfile", "q", false, "Also export a qp file for each clip")
	chaptersCmd.Flags().StringP("language", "l", "", "Chapter language (default from config)")
}
