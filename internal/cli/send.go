package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophterm/internal/staging"
	"github.com/dmitrijs2005/gophterm/internal/transport"
	"github.com/spf13/cobra"
)

func (a *App) sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <file>",
		Short: "Stream a file as an upload envelope",
		Long: `Stages file and writes it to stdout as a base64 upload envelope while
it is being staged. Progress is shown on stderr when it is a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			src, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			info, err := src.Stat()
			if err != nil {
				return err
			}

			f, err := a.store.Create(map[string]string{
				staging.MetaFileName: uploadName(args[0]),
				staging.MetaFileSize: strconv.FormatInt(info.Size(), 10),
			})
			if err != nil {
				return err
			}
			total := f.TotalSize()

			t := transport.NewBuffered(cmd.OutOrStdout(), a.config.TransportBufferSize, a.logger)
			enc, err := a.session.Upload(ctx, f, t)
			if err != nil {
				_ = f.SetSuccess(false)
				return errors.Join(err, t.Close())
			}

			if a.isTerminal() {
				p := newProgress(a.stderr, total)
				enc.OnProgress(p.update)
				defer p.done()
			}

			// The upload tails the staged file while it is written.
			if _, err := io.Copy(f, src); err != nil {
				enc.Abort()
				<-enc.Done()
				return errors.Join(fmt.Errorf("stage %s: %w", args[0], err), f.SetSuccess(false), t.Close())
			}
			if err := f.SetSuccess(true); err != nil {
				enc.Abort()
				<-enc.Done()
				return errors.Join(err, t.Close())
			}

			<-enc.Done()
			return errors.Join(enc.Err(), t.Close())
		},
	}
}

// uploadName returns the file name announced for path. Metadata travels as
// JSON, so bytes that are not UTF-8 are replaced to keep the name intact
// through a decode.
func uploadName(path string) string {
	return strings.ToValidUTF8(filepath.Base(path), "_")
}
