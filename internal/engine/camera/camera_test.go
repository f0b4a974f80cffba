package camera

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func TestPositionDistance(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = mgl32.Vec3{1, 2, 3}

	pos := c.Position()
	d := pos.Sub(c.Center).Len()
	if gomath.Abs(float64(d-c.Distance)) > eps {
		t.Errorf("expected camera %f from center, got %f", c.Distance, d)
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()

	c.HandleDrag(0, 1e6)
	if c.RotationX != c.MaxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", c.MaxPitch, c.RotationX)
	}

	c.HandleDrag(0, -1e6)
	if c.RotationX != c.MinPitch {
		t.Errorf("expected pitch clamped to %f, got %f", c.MinPitch, c.RotationX)
	}
}

func TestHandleZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()

	for i := 0; i < 100; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", c.MinDistance, c.Distance)
	}

	for i := 0; i < 100; i++ {
		c.HandleZoom(-1)
	}
	if c.Distance != c.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", c.MaxDistance, c.Distance)
	}
}

func TestReset(t *testing.T) {
	c := NewOrbitCamera()
	want := *c

	c.HandleDrag(123, 456)
	c.HandleZoom(3)
	c.Reset()

	if c.Distance != want.Distance || c.RotationX != want.RotationX || c.RotationY != want.RotationY {
		t.Errorf("Reset did not restore defaults: got %+v want %+v", *c, want)
	}
}

func TestViewMatrixLooksAtCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = mgl32.Vec3{0, 1, 0}

	// The center must map to a point on the negative view z axis.
	view := c.ViewMatrix()
	p := view.Mul4x1(mgl32.Vec4{0, 1, 0, 1})
	if gomath.Abs(float64(p.X())) > eps || gomath.Abs(float64(p.Y())) > eps {
		t.Errorf("center not on view axis: %v", p)
	}
	if p.Z() >= 0 {
		t.Errorf("center should be in front of the camera, got z=%f", p.Z())
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{-1, -2, -1}, mgl32.Vec3{1, 2, 1})

	if c.Center != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("expected center at origin, got %v", c.Center)
	}
	if gomath.Abs(float64(c.Distance-8)) > eps {
		t.Errorf("expected distance 8, got %f", c.Distance)
	}
}
