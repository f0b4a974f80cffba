// Package geometry builds procedural triangle meshes and computes
// per-vertex normals for strip and list topologies.
package geometry

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle mesh ready for upload. Positions and the
// index sequence are final once built; no further mutation occurs after
// handoff to the rendering layer.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32
	Topology  Topology
}

// CanParams describes a capped cylinder-with-cones ("soda can") shape.
// The can stands along the Z axis, centered on Center.
type CanParams struct {
	Center     mgl32.Vec3
	BodyRadius float32 // cylinder wall radius
	CapRadius  float32 // radius of the flat cap at each end
	Sides      int     // ring subdivision, at least 3
	Height     float32
}

// DefaultCan returns the parameters of a reasonably proportioned can.
func DefaultCan() CanParams {
	return CanParams{
		BodyRadius: 1.0,
		CapRadius:  0.8,
		Sides:      48,
		Height:     3.0,
	}
}

// Circle returns n vertices evenly spaced by angle 2*pi/n starting at
// angle 0, lying in the XY plane lifted to center's Z.
func Circle(center mgl32.Vec3, radius float32, n int) []mgl32.Vec3 {
	verts := make([]mgl32.Vec3, n)
	for i := 0; i < n; i++ {
		a := 2 * gomath.Pi * float64(i) / float64(n)
		verts[i] = center.Add(mgl32.Vec3{
			radius * float32(gomath.Cos(a)),
			radius * float32(gomath.Sin(a)),
			0,
		})
	}
	return verts
}

// BuildCan generates the can mesh as a single triangle strip.
//
// Vertex layout is four rings of p.Sides vertices each:
//
//	ring 0: top cap circle    (CapRadius,  +h/2)
//	ring 1: cylinder top      (BodyRadius, +h/2)
//	ring 2: cylinder bottom   (BodyRadius, -h/2)
//	ring 3: bottom cap circle (CapRadius,  -h/2)
//
// The body strip, the two ring-to-ring cone strips and the two cap fills
// are joined into one index sequence; segment junctions consist only of
// repeated indices, so every bridging triangle is degenerate and is
// dropped by downstream consumers.
func BuildCan(p CanParams) *Mesh {
	n := p.Sides
	if n < 3 {
		n = 3
	}
	half := p.Height / 2
	top := p.Center.Add(mgl32.Vec3{0, 0, half})
	bottom := p.Center.Add(mgl32.Vec3{0, 0, -half})

	b := &canBuilder{}
	b.positions = append(b.positions, Circle(top, p.CapRadius, n)...)
	b.positions = append(b.positions, Circle(top, p.BodyRadius, n)...)
	b.positions = append(b.positions, Circle(bottom, p.BodyRadius, n)...)
	b.positions = append(b.positions, Circle(bottom, p.CapRadius, n)...)

	b.addRingStrip(1, 2, n) // cylinder body
	b.addRingStrip(0, 1, n) // top shoulder cone
	b.addRingStrip(2, 3, n) // bottom shoulder cone
	b.addCircleFill(n, 0, false)  // top cap
	b.addCircleFill(n, 3*n, true) // bottom cap

	return &Mesh{Positions: b.positions, Indices: b.indices, Topology: TriangleStrip}
}

type canBuilder struct {
	positions []mgl32.Vec3
	indices   []uint32
}

// restart bridges the strip to a new segment starting at first. The
// duplicated indices only ever form triples with a repeated index, and the
// strip is padded back to even parity so the next segment's winding matches
// a fresh strip.
func (b *canBuilder) restart(first uint32) {
	if len(b.indices) == 0 {
		return
	}
	last := b.indices[len(b.indices)-1]
	b.indices = append(b.indices, last, first)
	if len(b.indices)%2 != 0 {
		b.indices = append(b.indices, first)
	}
}

// addRingStrip stitches ring a to ring b with pairs [a_i, b_i], closed by
// repeating the first pair. Equal radii give a cylinder wall, unequal radii
// a truncated cone.
func (b *canBuilder) addRingStrip(ringA, ringB, n int) {
	offA, offB := uint32(ringA*n), uint32(ringB*n)
	b.restart(offA)
	for i := 0; i <= n; i++ {
		j := uint32(i % n)
		b.indices = append(b.indices, offA+j, offB+j)
	}
}

// addCircleFill covers the cap ring at offset with a triangle fan
// re-expressed as a strip: a doubled lead-in on the ring's first vertex,
// then pairs walking inward from both ends of the ring. reverse mirrors
// each pair, flipping the emitted winding for the opposite cap.
func (b *canBuilder) addCircleFill(n, offset int, reverse bool) {
	first := uint32(offset)
	b.restart(first)
	b.indices = append(b.indices, first, first)
	for i := 0; i+1 <= n-i-1; i++ {
		lo := uint32(offset + i + 1)
		hi := uint32(offset + n - i - 1)
		if reverse {
			b.indices = append(b.indices, lo, hi)
		} else {
			b.indices = append(b.indices, hi, lo)
		}
	}
}
