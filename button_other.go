//go:build !linux

package main

import (
	"context"
	"log"
)

func monitorButton(ctx context.Context, name string, onPress func()) {
	if name != "" {
		log.Printf("input device %q ignored: evdev needs linux", name)
	}
}
