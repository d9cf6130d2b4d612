package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/gophterm/internal/config"
	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/dmitrijs2005/gophterm/internal/session"
	"github.com/dmitrijs2005/gophterm/internal/staging"
	"golang.org/x/term"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   *staging.Store
	session *session.Session

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// isTerminal reports whether progress may be drawn on stderr.
	isTerminal func() bool
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewConsoleLogger(os.Stderr, c.LogLevel)

	a, err := newApp(c, logger, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		return nil, err
	}
	a.isTerminal = func() bool { return term.IsTerminal(int(os.Stderr.Fd())) }
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	store, err := staging.NewStore(c.StagingDir, logger, staging.WithSizeInterval(c.ProgressInterval))
	if err != nil {
		return nil, err
	}

	s := session.New(store, logger, session.Options{
		WheelAsCursorKeys: c.WheelAsCursorKeys,
		WheelRepeat:       c.WheelRepeat,
		LineWidth:         c.LineWidth,
		ProgressInterval:  c.ProgressInterval,
	})

	return &App{
		config:     c,
		logger:     logger,
		store:      store,
		session:    s,
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		isTerminal: func() bool { return false },
	}, nil
}

// Run executes the command named by args and removes every staged file
// afterwards.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, a.store.Close())
}

// openInput returns the named file, or stdin when args is empty or "-".
func (a *App) openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(a.stdin), nil
	}
	return os.Open(args[0])
}
