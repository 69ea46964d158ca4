package projection

import (
	"math"
	"testing"

	"tomorecon/pkg/geometry"
	"tomorecon/pkg/volume"
)

func testGeometry() geometry.Geometry {
	return geometry.Geometry{
		NVoxelX: 8, NVoxelY: 8, NVoxelZ: 4,
		DetU: 12, DetV: 4,
	}
}

func TestForwardZeroVolume(t *testing.T) {
	geo := testGeometry()
	angles := geometry.EquallySpaced(4)
	proj := NewVoxelDriven()

	sino, err := proj.Forward(volume.New(geo.NVoxelX, geo.NVoxelY, geo.NVoxelZ), geo, angles, ModeInterpolated)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if sino.NumAngles() != 4 || sino.Pixels != geo.DetectorPixels() {
		t.Fatalf("sinogram shape %dx%d, want %dx4", sino.Pixels, sino.NumAngles(), geo.DetectorPixels())
	}
	for a, row := range sino.Rows {
		for j, x := range row {
			if x != 0 {
				t.Fatalf("Rows[%d][%d] = %v, want 0 for zero volume", a, j, x)
			}
		}
	}
}

func TestForwardMassConservation(t *testing.T) {
	// Every voxel lands on exactly one detector pixel when the detector is
	// wide enough, so the row sum equals the volume sum at every angle.
	geo := testGeometry()
	angles := geometry.EquallySpaced(6)
	proj := NewVoxelDriven()

	vol := volume.New(geo.NVoxelX, geo.NVoxelY, geo.NVoxelZ)
	total := 0.0
	for i := range vol.Data {
		vol.Data[i] = float64(i%7) + 1
		total += vol.Data[i]
	}

	sino, err := proj.Forward(vol, geo, angles, ModeInterpolated)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	for a, row := range sino.Rows {
		sum := 0.0
		for _, x := range row {
			sum += x
		}
		if math.Abs(sum-total) > 1e-9 {
			t.Errorf("angle %d: row sum %v, want %v", a, sum, total)
		}
	}
}

func TestBackOfZeros(t *testing.T) {
	geo := testGeometry()
	angles := geometry.EquallySpaced(4)
	proj := NewVoxelDriven()

	vol, err := proj.Back(NewSinogram(geo.DetectorPixels(), 4), geo, angles, ModeMatched)
	if err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	for i, x := range vol.Data {
		if x != 0 {
			t.Fatalf("Data[%d] = %v, want 0", i, x)
		}
	}
}

func TestForwardBackAdjoint(t *testing.T) {
	// <Ax, y> == <x, A^T y> for the matched pair.
	geo := testGeometry()
	angles := geometry.EquallySpaced(3)
	proj := NewVoxelDriven()

	x := volume.New(geo.NVoxelX, geo.NVoxelY, geo.NVoxelZ)
	for i := range x.Data {
		x.Data[i] = math.Sin(float64(i)) + 1.5
	}
	y := NewSinogram(geo.DetectorPixels(), len(angles))
	for a := range y.Rows {
		for j := range y.Rows[a] {
			y.Rows[a][j] = math.Cos(float64(a*31 + j))
		}
	}

	ax, err := proj.Forward(x, geo, angles, ModeInterpolated)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	aty, err := proj.Back(y, geo, angles, ModeMatched)
	if err != nil {
		t.Fatalf("Back failed: %v", err)
	}

	lhs := 0.0
	for a := range y.Rows {
		for j := range y.Rows[a] {
			lhs += ax.Rows[a][j] * y.Rows[a][j]
		}
	}
	rhs := 0.0
	for i := range x.Data {
		rhs += x.Data[i] * aty.Data[i]
	}

	if math.Abs(lhs-rhs) > 1e-6*math.Max(1, math.Abs(lhs)) {
		t.Errorf("adjoint mismatch: <Ax,y>=%v, <x,Aty>=%v", lhs, rhs)
	}
}

func TestSubsetSharesRows(t *testing.T) {
	sino := NewSinogram(4, 3)
	sino.Rows[2][1] = 9.0

	sub, err := sino.Subset([]int{2, 0})
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}
	if sub.NumAngles() != 2 {
		t.Fatalf("subset has %d rows, want 2", sub.NumAngles())
	}
	if sub.Rows[0][1] != 9.0 {
		t.Errorf("subset row 0 = %v, want shared row 2 of source", sub.Rows[0])
	}

	if _, err := sino.Subset([]int{3}); err == nil {
		t.Error("expected out-of-range error, got nil")
	}
}

func TestResidual(t *testing.T) {
	m := NewSinogram(2, 1)
	s := NewSinogram(2, 1)
	m.Rows[0][0], m.Rows[0][1] = 5, 3
	s.Rows[0][0], s.Rows[0][1] = 2, 4

	r, err := Residual(m, s)
	if err != nil {
		t.Fatalf("Residual failed: %v", err)
	}
	if r.Rows[0][0] != 3 || r.Rows[0][1] != -1 {
		t.Errorf("residual = %v, want [3 -1]", r.Rows[0])
	}

	if _, err := Residual(m, NewSinogram(3, 1)); err == nil {
		t.Error("expected shape mismatch error, got nil")
	}
}

func TestAnalyticBackprojection(t *testing.T) {
	geo := testGeometry()
	angles := geometry.EquallySpaced(4)
	proj := NewVoxelDriven()
	analytic := NewBackprojection(proj)

	vol := volume.New(geo.NVoxelX, geo.NVoxelY, geo.NVoxelZ)
	vol.Set(4, 4, 2, 1.0)

	sino, err := proj.Forward(vol, geo, angles, ModeInterpolated)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	rec, err := analytic.Reconstruct(sino, geo, angles)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if !rec.SameShape(vol) {
		t.Fatalf("reconstruction shape %dx%dx%d, want volume shape", rec.NX, rec.NY, rec.NZ)
	}
	min, max := rec.MinMax()
	if min < 0 || max <= 0 {
		t.Errorf("backprojection of a point source: min %v, max %v, want nonnegative with positive mass", min, max)
	}
}
