package staging

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophterm/internal/common"
)

var (
	ErrNotDownloading   = errors.New("staging: file is not downloading")
	ErrAlreadySignalled = errors.New("staging: success already signalled")
	ErrDisposed         = fmt.Errorf("staging: %w", common.ErrorDisposed)
	ErrReaderClosed     = fmt.Errorf("staging: reader %w", common.ErrorClosed)
)
