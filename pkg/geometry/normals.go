package geometry

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Topology describes how an index sequence forms triangles.
type Topology int

const (
	// TriangleStrip forms one triangle per index position from each
	// overlapping triple, with winding alternating by position parity.
	TriangleStrip Topology = iota
	// TriangleList forms one triangle per disjoint index triple.
	TriangleList
)

// String returns a human-readable topology name.
func (t Topology) String() string {
	switch t {
	case TriangleStrip:
		return "strip"
	case TriangleList:
		return "list"
	default:
		return "unknown"
	}
}

// Normals computes one unit normal per vertex by accumulating the face
// normal of every triangle touching it and normalizing the sum. Face
// normals are accumulated unnormalized, so larger faces contribute
// proportionally more weight.
//
// Triples with any two equal indices are degenerate strip-termination
// markers and contribute nothing. skip lists additional triangles to
// exclude, identified by their starting offset in the index sequence;
// it is used to keep a sharp seam from blending normals across it.
//
// A vertex touched by no contributing triangle keeps a zero normal, which
// must not be treated as a valid direction.
func Normals(positions []mgl32.Vec3, indices []uint32, topo Topology, skip []int) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))

	step := 1
	if topo == TriangleList {
		step = 3
	}

	var skips []int
	if len(skip) > 0 {
		skips = append(skips, skip...)
		sort.Ints(skips)
	}
	cursor := 0

	for i := 0; i+2 < len(indices); i += step {
		for cursor < len(skips) && skips[cursor] < i {
			cursor++
		}
		if cursor < len(skips) && skips[cursor] == i {
			cursor++
			continue
		}

		j, k, l := indices[i], indices[i+1], indices[i+2]
		if j == k || k == l || j == l {
			continue
		}

		e1 := positions[k].Sub(positions[j])
		e2 := positions[l].Sub(positions[j])
		var face mgl32.Vec3
		if topo == TriangleStrip && i%2 == 1 {
			// Odd strip positions have opposite winding.
			face = e2.Cross(e1)
		} else {
			face = e1.Cross(e2)
		}

		normals[j] = normals[j].Add(face)
		normals[k] = normals[k].Add(face)
		normals[l] = normals[l].Add(face)
	}

	for i, nrm := range normals {
		if length := nrm.Len(); length > 0 {
			normals[i] = nrm.Mul(1 / length)
		}
	}
	return normals
}
