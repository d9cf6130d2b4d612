package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gophterm",
		Short: "Terminal escape sequence toolkit",
		Long: `gophterm stages iTerm2 inline files, streams staged files as base64
upload envelopes and encodes xterm mouse reports.

Configuration flags (-c, -d, -p, -w, -b, -l, -wheel-keys, -wheel-repeat)
are read before the command and apply to every command.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		a.recvCmd(),
		a.sendCmd(),
		a.decodeCmd(),
		a.mouseCmd(),
		a.versionCmd(),
	)
	return root
}
