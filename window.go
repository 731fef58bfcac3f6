//go:build window

package main

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

const WINDOW_SCALE = 32

// matrixGame shows the matrix frame scaled up in a desktop window.
type matrixGame struct {
	m    *Matrix
	img  *ebiten.Image
	done <-chan struct{}
}

func (g *matrixGame) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
		return nil
	}
}

func (g *matrixGame) Draw(screen *ebiten.Image) {
	frame := g.m.Frame()
	if g.img == nil {
		b := frame.Bounds()
		g.img = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.img.WritePixels(frame.Pix)
	screen.DrawImage(g.img, nil)
}

func (g *matrixGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.m.Size()
	return int(w), int(h)
}

// runWindow runs the display loop in the background and the window on
// the calling goroutine, which must be the main one. Closing the window
// stops the loop.
func runWindow(ctx context.Context, m *Matrix, run func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- run(ctx)
		cancel()
	}()

	w, h := m.Size()
	ebiten.SetWindowTitle("AQI matrix")
	ebiten.SetWindowSize(int(w)*WINDOW_SCALE, int(h)*WINDOW_SCALE)
	ebiten.SetTPS(10)
	err := ebiten.RunGame(&matrixGame{m: m, done: ctx.Done()})
	cancel()
	runErr := <-errc
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return runErr
}
