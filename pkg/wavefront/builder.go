package wavefront

import "github.com/go-gl/mathgl/mgl32"

// vertexKey identifies a unique output vertex by its source indices.
// Absent channels are -1; keeping the three fields separate means a
// missing texcoord can never be confused with a missing normal.
type vertexKey struct {
	v, t, n int
}

// meshBuilder collapses identical (position, texcoord, normal) references
// into a single output vertex, keeping the parallel output sequences
// index-aligned.
type meshBuilder struct {
	lookup    map[vertexKey]uint32
	positions []mgl32.Vec3
	texcoords []mgl32.Vec2
	normals   []mgl32.Vec3
	explicit  []bool // true where the normal came from a vn reference
	indices   []uint32
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{lookup: make(map[vertexKey]uint32)}
}

// add returns the stable output index for key, appending a new vertex the
// first time the key is seen.
func (b *meshBuilder) add(key vertexKey, pos mgl32.Vec3, uv mgl32.Vec2, nrm mgl32.Vec3) uint32 {
	if idx, ok := b.lookup[key]; ok {
		return idx
	}
	idx := uint32(len(b.positions))
	b.positions = append(b.positions, pos)
	b.texcoords = append(b.texcoords, uv)
	b.normals = append(b.normals, nrm)
	b.explicit = append(b.explicit, key.n >= 0)
	b.lookup[key] = idx
	return idx
}
