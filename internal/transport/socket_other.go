//go:build !unix

package transport

import (
	"context"

	pcerr "pollcat/internal/errors"
)

// Connect is only available on unix platforms.
func (b *Builder) Connect(_ context.Context, address string) (Conn, error) {
	return nil, pcerr.Wrap("connect", address, pcerr.ErrPlatformUnsupported)
}
