package app

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"waterdemo/internal/frame"
)

// Object and material slots in every frame.
const (
	waterObject = iota
	landObject
	objectCount
)

const (
	grassMaterial = iota
	waterMaterial
	materialCount
)

type renderItem struct {
	name         string
	world        mgl32.Mat4
	texTransform mgl32.Mat4
	dirty        frame.Dirty
}

type material struct {
	name   string
	consts frame.MaterialConstants
	dirty  frame.Dirty
}

func buildRenderItems(depth int) []renderItem {
	items := make([]renderItem, objectCount)
	items[waterObject] = renderItem{
		name:         "water",
		world:        mgl32.Translate3D(0, -5, 0).Mul4(mgl32.Scale3D(5, 1, 5)),
		texTransform: mgl32.Scale3D(20, 20, 20),
		dirty:        frame.NewDirty(depth),
	}
	items[landObject] = renderItem{
		name:         "land",
		world:        mgl32.Ident4(),
		texTransform: mgl32.Scale3D(15, 15, 15),
		dirty:        frame.NewDirty(depth),
	}
	return items
}

func buildMaterials(depth int) []material {
	mats := make([]material, materialCount)
	mats[grassMaterial] = material{
		name: "grass",
		consts: frame.MaterialConstants{
			DiffuseAlbedo: mgl32.Vec4{1, 1, 1, 1},
			FresnelR0:     mgl32.Vec3{0.01, 0.01, 0.01},
			Roughness:     0.125,
			MatTransform:  mgl32.Ident4(),
		},
		dirty: frame.NewDirty(depth),
	}
	// Without a water texture the albedo carries the colour.
	mats[waterMaterial] = material{
		name: "water",
		consts: frame.MaterialConstants{
			DiffuseAlbedo: mgl32.Vec4{0.2, 0.45, 0.75, 0.5},
			FresnelR0:     mgl32.Vec3{0.1, 0.1, 0.1},
			Roughness:     0,
			MatTransform:  mgl32.Ident4(),
		},
		dirty: frame.NewDirty(depth),
	}
	return mats
}

// animateMaterials scrolls the water texture.
func (a *App) animateMaterials(dt float32) {
	m := &a.materials[waterMaterial]
	tu := m.consts.MatTransform[12] + 0.1*dt
	tv := m.consts.MatTransform[13] + 0.02*dt
	if tu >= 1 {
		tu -= 1
	}
	if tv >= 1 {
		tv -= 1
	}
	m.consts.MatTransform[12] = tu
	m.consts.MatTransform[13] = tv
	m.dirty.Mark()
}

func (a *App) updateObjectConstants(slot *frame.Slot) {
	for i := range a.items {
		it := &a.items[i]
		if it.dirty.Consume() {
			slot.Objects[i] = frame.ObjectConstants{World: it.world, TexTransform: it.texTransform}
		}
	}
}

func (a *App) updateMaterialConstants(slot *frame.Slot) {
	for i := range a.materials {
		m := &a.materials[i]
		if m.dirty.Consume() {
			slot.Materials[i] = m.consts
		}
	}
}

func (a *App) updatePassConstants(slot *frame.Slot, dt float32) {
	view := a.camera.View()
	aspect := float32(a.opts.TargetWidth) / float32(a.opts.TargetHeight)
	proj := mgl32.Perspective(0.25*math32.Pi, aspect, nearZ, farZ)
	viewProj := proj.Mul4(view)

	p := &slot.Pass
	*p = frame.DefaultPassConstants()
	p.View, p.InvView = view, view.Inv()
	p.Proj, p.InvProj = proj, proj.Inv()
	p.ViewProj, p.InvViewProj = viewProj, viewProj.Inv()
	p.EyePos = a.camera.Eye()
	p.RenderTargetSize = mgl32.Vec2{float32(a.opts.TargetWidth), float32(a.opts.TargetHeight)}
	p.InvRenderTargetSize = mgl32.Vec2{1 / float32(a.opts.TargetWidth), 1 / float32(a.opts.TargetHeight)}
	p.NearZ, p.FarZ = nearZ, farZ
	p.TotalTime, p.DeltaTime = a.total, dt
	p.AmbientLight = mgl32.Vec4{0.375, 0.375, 0.4, 1}

	p.Lights[0].Direction = mgl32.Vec3{0.57735, -0.57735, 0.57735}
	p.Lights[0].Strength = mgl32.Vec3{0.6, 0.6, 0.6}
	p.Lights[1].Position = mgl32.Vec3{12, 17, -54}
	p.Lights[1].Strength = mgl32.Vec3{50, 25, 10}
	p.Lights[2].Position = mgl32.Vec3{5.5, 10, -6}
	p.Lights[2].Direction = mgl32.Vec3{0, -1, 0}
	p.Lights[2].Strength = mgl32.Vec3{2, 2, 2}
	p.Lights[2].SpotPower = 1
}
