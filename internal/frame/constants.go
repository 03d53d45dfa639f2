package frame

import "github.com/go-gl/mathgl/mgl32"

// MaxLights is the size of the light array in PassConstants.
const MaxLights = 16

// ObjectConstants are the per-object transforms of a render item.
type ObjectConstants struct {
	World        mgl32.Mat4
	TexTransform mgl32.Mat4
}

// DefaultObjectConstants returns identity transforms.
func DefaultObjectConstants() ObjectConstants {
	return ObjectConstants{World: mgl32.Ident4(), TexTransform: mgl32.Ident4()}
}

// MaterialConstants describe the surface response of a material.
type MaterialConstants struct {
	DiffuseAlbedo mgl32.Vec4
	FresnelR0     mgl32.Vec3
	Roughness     float32
	MatTransform  mgl32.Mat4
}

// DefaultMaterialConstants returns a white, mostly rough dielectric.
func DefaultMaterialConstants() MaterialConstants {
	return MaterialConstants{
		DiffuseAlbedo: mgl32.Vec4{1, 1, 1, 1},
		FresnelR0:     mgl32.Vec3{0.01, 0.01, 0.01},
		Roughness:     0.25,
		MatTransform:  mgl32.Ident4(),
	}
}

// Light is a directional, point or spot light.
type Light struct {
	Strength     mgl32.Vec3
	FalloffStart float32
	Direction    mgl32.Vec3
	FalloffEnd   float32
	Position     mgl32.Vec3
	SpotPower    float32
}

// DefaultLight returns a dim light pointing straight down.
func DefaultLight() Light {
	return Light{
		Strength:     mgl32.Vec3{0.5, 0.5, 0.5},
		FalloffStart: 1,
		Direction:    mgl32.Vec3{0, -1, 0},
		FalloffEnd:   10,
		SpotPower:    64,
	}
}

// PassConstants are shared by every object drawn in a frame.
type PassConstants struct {
	View        mgl32.Mat4
	InvView     mgl32.Mat4
	Proj        mgl32.Mat4
	InvProj     mgl32.Mat4
	ViewProj    mgl32.Mat4
	InvViewProj mgl32.Mat4

	EyePos              mgl32.Vec3
	RenderTargetSize    mgl32.Vec2
	InvRenderTargetSize mgl32.Vec2
	NearZ               float32
	FarZ                float32
	TotalTime           float32
	DeltaTime           float32

	AmbientLight mgl32.Vec4
	FogColor     mgl32.Vec4
	FogStart     float32
	FogRange     float32

	// Lights[0] is the key light used by the shading consumer.
	Lights [MaxLights]Light
}

// DefaultPassConstants returns identity matrices, light grey fog and default
// lights.
func DefaultPassConstants() PassConstants {
	p := PassConstants{
		View:         mgl32.Ident4(),
		InvView:      mgl32.Ident4(),
		Proj:         mgl32.Ident4(),
		InvProj:      mgl32.Ident4(),
		ViewProj:     mgl32.Ident4(),
		InvViewProj:  mgl32.Ident4(),
		AmbientLight: mgl32.Vec4{0, 0, 0, 1},
		FogColor:     mgl32.Vec4{0.7, 0.7, 0.7, 1},
		FogStart:     5,
		FogRange:     150,
	}
	for i := range p.Lights {
		p.Lights[i] = DefaultLight()
	}
	return p
}

// Vertex is the per-vertex data uploaded for the water mesh.
type Vertex struct {
	Pos    mgl32.Vec3
	Normal mgl32.Vec3
	TexC   mgl32.Vec2
}
