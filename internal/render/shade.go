package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"waterdemo/internal/frame"
)

// shader holds the per-submission state derived from the slot's constants.
type shader struct {
	world     mgl32.Mat4
	normalMat mgl32.Mat3
	texMat    mgl32.Mat4

	albedo    mgl32.Vec4
	fresnelR0 mgl32.Vec3
	shininess float32

	eye      mgl32.Vec3
	ambient  mgl32.Vec3
	toLight  mgl32.Vec3
	strength mgl32.Vec3

	fogColor mgl32.Vec3
	fogStart float32
	fogRange float32
}

func newShader(obj frame.ObjectConstants, mat frame.MaterialConstants, pass *frame.PassConstants) shader {
	key := pass.Lights[0]
	toLight := key.Direction.Mul(-1)
	if toLight.Len() > 0 {
		toLight = toLight.Normalize()
	}
	return shader{
		world:     obj.World,
		normalMat: obj.World.Mat3().Inv().Transpose(),
		texMat:    mat.MatTransform.Mul4(obj.TexTransform),
		albedo:    mat.DiffuseAlbedo,
		fresnelR0: mat.FresnelR0,
		shininess: (1 - mat.Roughness) * 256,
		eye:       pass.EyePos,
		ambient:   pass.AmbientLight.Vec3(),
		toLight:   toLight,
		strength:  key.Strength,
		fogColor:  pass.FogColor.Vec3(),
		fogStart:  pass.FogStart,
		fogRange:  pass.FogRange,
	}
}

// shade lights one vertex and returns its colour in [0,1].
func (s *shader) shade(v frame.Vertex) mgl32.Vec3 {
	posW := s.world.Mul4x1(v.Pos.Vec4(1)).Vec3()
	n := s.normalMat.Mul3x1(v.Normal)
	if n.Len() > 0 {
		n = n.Normalize()
	}

	toEye := s.eye.Sub(posW)
	dist := toEye.Len()
	if dist > 0 {
		toEye = toEye.Mul(1 / dist)
	}

	uv := s.texMat.Mul4x1(mgl32.Vec4{v.TexC.X(), v.TexC.Y(), 0, 1})
	albedo := s.albedo.Vec3().Mul(ripple(uv.X(), uv.Y()))

	ambient := mul(s.ambient, albedo)

	ndotl := math32.Max(s.toLight.Dot(n), 0)
	lightStrength := s.strength.Mul(ndotl)

	var spec mgl32.Vec3
	if h := toEye.Add(s.toLight); h.Len() > 0 {
		h = h.Normalize()
		roughness := (s.shininess + 8) * math32.Pow(math32.Max(h.Dot(n), 0), s.shininess) / 8
		f := schlick(s.fresnelR0, h, s.toLight).Mul(roughness)
		spec = mgl32.Vec3{f[0] / (f[0] + 1), f[1] / (f[1] + 1), f[2] / (f[2] + 1)}
	}
	lit := mul(albedo.Add(spec), lightStrength)

	color := ambient.Add(lit)
	if s.fogRange > 0 {
		fog := clamp01((dist - s.fogStart) / s.fogRange)
		color = color.Mul(1 - fog).Add(s.fogColor.Mul(fog))
	}
	return color
}

// schlick approximates the Fresnel reflectance for light arriving along l
// seen through the half vector h.
func schlick(r0, h, l mgl32.Vec3) mgl32.Vec3 {
	cos := clamp01(h.Dot(l))
	f0 := 1 - cos
	k := f0 * f0 * f0 * f0 * f0
	return r0.Add(mgl32.Vec3{1, 1, 1}.Sub(r0).Mul(k))
}

// ripple stands in for the diffuse texture: a soft periodic pattern over the
// transformed texture coordinates.
func ripple(u, v float32) float32 {
	return 0.85 + 0.15*math32.Sin(2*math32.Pi*u)*math32.Sin(2*math32.Pi*v)
}

func mul(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func clamp01(v float32) float32 {
	return math32.Min(math32.Max(v, 0), 1)
}

func toByte(v float32) byte {
	return byte(clamp01(v)*255 + 0.5)
}
