package geometry

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func TestCircle(t *testing.T) {
	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		n      int
	}{
		{"triangle ring", mgl32.Vec3{}, 1.0, 3},
		{"unit ring", mgl32.Vec3{}, 1.0, 8},
		{"offset ring", mgl32.Vec3{1, 2, 3}, 2.5, 12},
		{"fine ring", mgl32.Vec3{0, 0, -1}, 0.25, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verts := Circle(tt.center, tt.radius, tt.n)
			if len(verts) != tt.n {
				t.Fatalf("got %d vertices, want %d", len(verts), tt.n)
			}

			want := 2 * gomath.Pi / float64(tt.n)
			for i, v := range verts {
				d := v.Sub(tt.center).Len()
				if gomath.Abs(float64(d-tt.radius)) > eps {
					t.Errorf("vertex %d at distance %v, want %v", i, d, tt.radius)
				}

				// Angle between consecutive vertices must be 2*pi/n.
				next := verts[(i+1)%tt.n].Sub(tt.center)
				cur := v.Sub(tt.center)
				cos := float64(cur.Dot(next) / (cur.Len() * next.Len()))
				if gomath.Abs(gomath.Acos(gomath.Min(1, cos))-want) > eps {
					t.Errorf("vertex %d: angular spacing %v, want %v",
						i, gomath.Acos(cos), want)
				}
			}
		})
	}
}

func TestBuildCan_IndexBounds(t *testing.T) {
	for _, sides := range []int{3, 4, 5, 16, 48} {
		mesh := BuildCan(CanParams{BodyRadius: 1, CapRadius: 0.8, Sides: sides, Height: 3})
		want := 4 * sides
		if len(mesh.Positions) != want {
			t.Fatalf("sides=%d: got %d vertices, want %d", sides, len(mesh.Positions), want)
		}
		if mesh.Topology != TriangleStrip {
			t.Fatalf("sides=%d: topology %v, want strip", sides, mesh.Topology)
		}
		for i, idx := range mesh.Indices {
			if int(idx) >= want {
				t.Fatalf("sides=%d: index %d at position %d out of range [0,%d)",
					sides, idx, i, want)
			}
		}
	}
}

// countTriangles walks the strip counting non-degenerate triples.
func countTriangles(indices []uint32) int {
	count := 0
	for i := 0; i+2 < len(indices); i++ {
		j, k, l := indices[i], indices[i+1], indices[i+2]
		if j != k && k != l && j != l {
			count++
		}
	}
	return count
}

func TestBuildCan_TriangleCount(t *testing.T) {
	// A watertight can is 2n wall triangles, 2n per shoulder ring and
	// n-2 per cap fill: 8n-4 total. Anything else means a segment
	// junction leaked a spurious triangle or dropped a real one.
	for _, sides := range []int{3, 4, 5, 6, 17, 48} {
		mesh := BuildCan(CanParams{BodyRadius: 1, CapRadius: 0.8, Sides: sides, Height: 3})
		got := countTriangles(mesh.Indices)
		want := 8*sides - 4
		if got != want {
			t.Errorf("sides=%d: %d non-degenerate triangles, want %d", sides, got, want)
		}
	}
}

func TestBuildCan_NormalsOutwardAndUnit(t *testing.T) {
	p := CanParams{BodyRadius: 1, CapRadius: 0.8, Sides: 24, Height: 3}
	mesh := BuildCan(p)
	normals := Normals(mesh.Positions, mesh.Indices, TriangleStrip, nil)

	n := p.Sides
	for i, nrm := range normals {
		length := nrm.Len()
		if gomath.Abs(float64(length-1)) > eps {
			t.Errorf("vertex %d: normal length %v, want 1", i, length)
			continue
		}

		ring := i / n
		switch ring {
		case 0: // top cap ring faces up
			if nrm.Z() <= 0 {
				t.Errorf("vertex %d (top cap): normal %v not facing +Z", i, nrm)
			}
		case 3: // bottom cap ring faces down
			if nrm.Z() >= 0 {
				t.Errorf("vertex %d (bottom cap): normal %v not facing -Z", i, nrm)
			}
		default: // wall rings face outward radially
			radial := mgl32.Vec3{mesh.Positions[i].X(), mesh.Positions[i].Y(), 0}.Normalize()
			if nrm.Dot(radial) <= 0 {
				t.Errorf("vertex %d (wall): normal %v points inward", i, nrm)
			}
		}
	}
}
