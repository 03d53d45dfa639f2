package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// handleControls applies camera keys, mouse disturbances and debug hotkeys.
// It reports whether the user asked to quit.
func (g *Game) handleControls() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return true
	}

	var dTheta, dPhi, dRadius float32
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dTheta -= orbitStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dTheta += orbitStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dPhi -= orbitStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dPhi += orbitStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		dRadius -= zoomStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		dRadius += zoomStep
	}
	if dTheta != 0 || dPhi != 0 {
		g.pipe.app.Orbit(dTheta, dPhi)
	}
	if dRadius != 0 {
		g.pipe.app.Zoom(dRadius)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.disturbBrush(y, x)
	}

	g.handleDebugControls()
	return false
}

// disturbBrush disturbs the brush cells around (i, j) that lie on the
// interior.
func (g *Game) disturbBrush(i, j int) {
	hits, err := g.pipe.app.DisturbBrush(i, j, g.clickMag, g.brush)
	if err != nil {
		g.log.Warn("disturb failed", "err", err)
		return
	}
	g.log.Debug("click disturbance", "row", i, "column", j, "cells", hits, "magnitude", g.clickMag)
}

// handleDebugControls processes debug overlay hotkeys.
func (g *Game) handleDebugControls() {
	if !g.debug {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.adjustClickMagnitude(-clickMagStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.adjustClickMagnitude(clickMagStep)
	}
}

// adjustClickMagnitude clamps the click magnitude within bounds.
func (g *Game) adjustClickMagnitude(delta float32) {
	g.clickMag += delta
	if g.clickMag < minClickMag {
		g.clickMag = minClickMag
	} else if g.clickMag > maxClickMag {
		g.clickMag = maxClickMag
	}
}
