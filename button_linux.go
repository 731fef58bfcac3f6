//go:build linux

package main

import (
	"context"
	"log"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

// monitorButton calls onPress for every debounced key press on the input
// device named name. It returns when ctx is done or the device is missing.
func monitorButton(ctx context.Context, name string, onPress func()) {
	if name == "" {
		return
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		log.Printf("ListDevicePaths error: %v", err)
		return
	}

	var devPath string
	for _, ip := range paths {
		if ip.Name == name {
			devPath = ip.Path
			break
		}
	}
	if devPath == "" {
		log.Printf("no input device named %q", name)
		return
	}

	dev, err := evdev.Open(devPath)
	if err != nil {
		log.Printf("Open(%s) error: %v", devPath, err)
		return
	}
	if err := dev.Grab(); err != nil {
		log.Printf("warning: failed to grab device: %v", err)
	}
	log.Printf("using input device: %s (%s)", devPath, name)

	// ReadOne blocks, so closing the device is what ends the loop.
	go func() {
		<-ctx.Done()
		dev.Ungrab()
		dev.Close()
	}()

	db := debouncer{window: BUTTON_DEBOUNCE_TIME}
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("read error: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if ev.Type != evdev.EV_KEY || ev.Value != 1 {
			continue
		}
		if db.accept(time.Now()) {
			log.Println("button pressed, refreshing")
			onPress()
		}
	}
}
