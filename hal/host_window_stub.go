//go:build !cgo

package hal

import (
	"context"
	"errors"
)

// WindowOptions configures the desktop window.
type WindowOptions struct {
	Title string
	Scale int
}

func RunWindow(context.Context, *Host, WindowOptions, func() error) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
