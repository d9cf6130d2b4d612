package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophterm/internal/staging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *App) recvCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "recv [file]",
		Short: "Stage an inline file from an OSC 1337 sequence",
		Long: `Reads one OSC 1337 File= sequence from file, or stdin when omitted,
stages the decoded payload and prints a summary. The surrounding ESC ] and
BEL or ST terminators are optional.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read sequence: %w", err)
			}

			d, err := a.session.FeedOSC(cmd.Context(), oscBody(string(raw)))
			if err != nil {
				return err
			}

			f := d.File()
			name, _ := f.MetadataField(staging.MetaFileName)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
				f.ID(), name, humanize.Bytes(uint64(f.AvailableSize())), f.MimeType())

			if out == "" {
				return nil
			}
			return a.saveStaged(f, out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the received content to this path")
	return cmd
}

// oscBody strips the OSC introducer and terminator around a sequence body.
func oscBody(s string) string {
	s = strings.TrimRight(s, "\r\n")
	s = strings.TrimPrefix(s, "\x1b]")
	s = strings.TrimSuffix(s, "\a")
	s = strings.TrimSuffix(s, "\x1b\\")
	return s
}

func (a *App) saveStaged(f *staging.File, path string) error {
	r, err := f.NewReader()
	if err != nil {
		return err
	}
	defer r.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return dst.Close()
}
