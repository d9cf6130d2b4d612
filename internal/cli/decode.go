package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/dmitrijs2005/gophterm/internal/upload"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *App) decodeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode an upload envelope",
		Long: `Reads an upload envelope produced by send from file, or stdin when
omitted, and prints its metadata. With --out the content is written to a file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			meta, body, err := upload.Decode(in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			keys := make([]string, 0, len(meta))
			for k := range meta {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "%s=%s\n", k, meta[k])
			}
			fmt.Fprintf(w, "body: %s\n", humanize.Bytes(uint64(len(body))))

			if out == "" {
				return nil
			}
			return os.WriteFile(out, body, 0o600)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the decoded content to this path")
	return cmd
}
