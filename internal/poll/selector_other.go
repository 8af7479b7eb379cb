//go:build !linux

package poll

import pcerr "pollcat/internal/errors"

func newSelector() (selector, error) {
	return nil, &pcerr.InitError{Backend: "none", Err: pcerr.ErrPlatformUnsupported}
}
