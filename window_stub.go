//go:build !window

package main

import (
	"context"
	"errors"
)

func runWindow(ctx context.Context, m *Matrix, run func(context.Context) error) error {
	return errors.New("built without window support, rebuild with -tags window")
}
