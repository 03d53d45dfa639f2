package app

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minPhi    = 0.1
	maxPhi    = math32.Pi - 0.1
	minRadius = 5
	maxRadius = 150
)

// Camera orbits the origin on a sphere.
type Camera struct {
	Theta  float32
	Phi    float32
	Radius float32
}

// DefaultCamera looks at the pool from just above the water line.
func DefaultCamera() Camera {
	return Camera{Theta: 1.5 * math32.Pi, Phi: math32.Pi/2 - 0.1, Radius: 50}
}

// Orbit rotates the camera, keeping it off the poles.
func (c *Camera) Orbit(dTheta, dPhi float32) {
	c.Theta += dTheta
	c.Phi = mgl32.Clamp(c.Phi+dPhi, minPhi, maxPhi)
}

// Zoom moves the camera toward or away from the origin.
func (c *Camera) Zoom(d float32) {
	c.Radius = mgl32.Clamp(c.Radius+d, minRadius, maxRadius)
}

// Eye returns the camera position.
func (c Camera) Eye() mgl32.Vec3 {
	sinPhi := math32.Sin(c.Phi)
	return mgl32.Vec3{
		c.Radius * sinPhi * math32.Cos(c.Theta),
		c.Radius * math32.Cos(c.Phi),
		c.Radius * sinPhi * math32.Sin(c.Theta),
	}
}

// View returns the look-at matrix toward the origin.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}
