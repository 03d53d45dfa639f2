package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Draw blits the latest shaded frame and the optional debug overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.pipe.queue.Snapshot(g.pixels) {
		screen.WritePixels(g.pixels)
	}
	if !g.debug {
		return
	}

	cx, cy := ebiten.CursorPosition()
	if cx >= 0 && cx < g.cols && cy >= 0 && cy < g.rows {
		g.drawCrosshair(screen, cx, cy)
	}

	st := g.pipe.app.Stats()
	cam := g.pipe.app.Camera()
	msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nSteps: %d  Sim: %.2fs\nFence: %d/%d\nEnergy: %.3f\nClick mag: %.1f (+/-)\nCamera: r=%.0f phi=%.2f",
		ebiten.ActualFPS(), ebiten.ActualTPS(), st.Steps, st.SimTime,
		st.Completed, st.Marker, st.Energy, g.clickMag, cam.Radius, cam.Phi)
	ebitenutil.DebugPrint(screen, msg)
}

// Layout reports one logical pixel per vertex of the water mesh.
func (g *Game) Layout(_, _ int) (int, int) { return g.cols, g.rows }

// drawCrosshair marks the brush around the hovered cell.
func (g *Game) drawCrosshair(screen *ebiten.Image, cx, cy int) {
	clr := color.RGBA{255, 80, 40, 220}
	r := g.brush.Radius() + 2
	g.drawLine(screen, cx-r, cy, cx+r, cy, clr)
	g.drawLine(screen, cx, cy-r, cx, cy+r, clr)
}

// drawLine plots a line segment using Bresenham's integer algorithm.
func (g *Game) drawLine(screen *ebiten.Image, x0, y0, x1, y1 int, clr color.Color) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < g.cols && y0 >= 0 && y0 < g.rows {
			screen.Set(x0, y0, clr)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}
