// Package scene computes the decorative background motion.
//
// Every function here is a pure function of the animation clock (seconds since
// the scene mounted) and a per-instance index. Clients sample a frame and
// apply the transforms; nothing is stored between frames.
package scene

import "math"

// Vec3 is a position or an Euler rotation in radians.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Transform is the per-frame placement of one primitive.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
}

// Shape is a wireframe solid bobbing around a fixed anchor.
type Shape struct {
	Kind           string  `json:"kind"`
	Anchor         Vec3    `json:"anchor"`
	FloatIntensity float64 `json:"float_intensity"`
	Speed          float64 `json:"speed"`
}

// Shapes is the fixed set of hero solids.
var Shapes = []Shape{
	{Kind: "octahedron", Anchor: Vec3{-5, 2, -3}, FloatIntensity: 2, Speed: 1},
	{Kind: "icosahedron", Anchor: Vec3{5, -1, -4}, FloatIntensity: 1.5, Speed: 1.5},
	{Kind: "dodecahedron", Anchor: Vec3{0, 3, -5}, FloatIntensity: 3, Speed: 0.8},
	{Kind: "tetrahedron", Anchor: Vec3{-3, -2, 2}, FloatIntensity: 2.5, Speed: 1.2},
}

// Glyphs are the code tokens circling the hero.
var Glyphs = []string{"{ }", "[ ]", "< />", "=>", "&&", "||", "++", "==="}

// Skills label the spheres orbiting the about section.
var Skills = []string{"Python", "React", "Machine Learning", "JavaScript", "Node.js", "MongoDB"}

// OrbCount is the number of golden orbs.
const OrbCount = 8

func clampTime(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	return t
}

// bob is the vertical float offset applied to floating shapes.
func bob(t, speed, intensity float64) float64 {
	return math.Sin(t*speed) * intensity * 0.1
}

// ShapeAt places shape i. Unknown indexes yield the zero transform.
func ShapeAt(t float64, i int) Transform {
	if i < 0 || i >= len(Shapes) {
		return Transform{}
	}
	t = clampTime(t)
	s := Shapes[i]
	return Transform{
		Position: Vec3{X: s.Anchor.X, Y: s.Anchor.Y + bob(t, s.Speed, s.FloatIntensity), Z: s.Anchor.Z},
		Rotation: Vec3{X: t * 0.5, Y: t * 0.3},
	}
}

// OrbAt places orb i on its orbit.
func OrbAt(t float64, i int) Transform {
	t = clampTime(t)
	idx := float64(i)
	radius := 6 + idx
	st := t * (0.2 + idx*0.1)
	return Transform{Position: Vec3{
		X: math.Cos(st+idx) * radius,
		Y: math.Sin(st*2) * 2,
		Z: math.Sin(st+idx) * radius,
	}}
}

// GlyphAt places glyph i on its wider, slower orbit.
func GlyphAt(t float64, i int) Transform {
	t = clampTime(t)
	idx := float64(i)
	radius := 10 + idx*2
	st := t * (0.1 + idx*0.05)
	return Transform{Position: Vec3{
		X: math.Cos(st+idx*2) * radius,
		Y: math.Sin(st) * 3,
		Z: math.Sin(st+idx*2) * radius,
	}}
}

// SkillAt places skill sphere i.
func SkillAt(t float64, i int) Transform {
	t = clampTime(t)
	idx := float64(i)
	radius := 6 + idx*1.8
	st := t * (0.2 + idx*0.08)
	return Transform{Position: Vec3{
		X: math.Cos(st+idx*2) * radius,
		Y: math.Sin(st*0.5) * 2,
		Z: math.Sin(st+idx*2) * radius,
	}}
}

// Labeled is a transform with its display text.
type Labeled struct {
	Label string `json:"label"`
	Transform
}

// Frame is one sampled instant of the whole scene.
type Frame struct {
	Time   float64     `json:"t"`
	Shapes []Transform `json:"shapes"`
	Orbs   []Transform `json:"orbs"`
	Glyphs []Labeled   `json:"glyphs"`
	Skills []Labeled   `json:"skills"`
}

// FrameAt samples every primitive at t.
func FrameAt(t float64) Frame {
	t = clampTime(t)
	f := Frame{
		Time:   t,
		Shapes: make([]Transform, len(Shapes)),
		Orbs:   make([]Transform, OrbCount),
		Glyphs: make([]Labeled, len(Glyphs)),
		Skills: make([]Labeled, len(Skills)),
	}
	for i := range Shapes {
		f.Shapes[i] = ShapeAt(t, i)
	}
	for i := 0; i < OrbCount; i++ {
		f.Orbs[i] = OrbAt(t, i)
	}
	for i, g := range Glyphs {
		f.Glyphs[i] = Labeled{Label: g, Transform: GlyphAt(t, i)}
	}
	for i, s := range Skills {
		f.Skills[i] = Labeled{Label: s, Transform: SkillAt(t, i)}
	}
	return f
}
