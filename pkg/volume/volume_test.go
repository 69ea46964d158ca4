package volume

import (
	"math"
	"path/filepath"
	"testing"
)

func TestCloneIsIndependent(t *testing.T) {
	v := New(2, 3, 4)
	v.Set(1, 2, 3, 5.0)

	c := v.Clone()
	c.Set(1, 2, 3, -1.0)

	if got := v.At(1, 2, 3); got != 5.0 {
		t.Errorf("original modified through clone: got %v, want 5.0", got)
	}
	if got := c.At(1, 2, 3); got != -1.0 {
		t.Errorf("clone value: got %v, want -1.0", got)
	}
}

func TestAddScaled(t *testing.T) {
	v := New(2, 2, 2)
	o := New(2, 2, 2)
	for i := range o.Data {
		o.Data[i] = 1.0
	}

	if err := v.AddScaled(2.5, o); err != nil {
		t.Fatalf("AddScaled failed: %v", err)
	}
	for i, x := range v.Data {
		if x != 2.5 {
			t.Fatalf("Data[%d] = %v, want 2.5", i, x)
		}
	}

	bad := New(3, 2, 2)
	if err := v.AddScaled(1.0, bad); err == nil {
		t.Error("expected shape mismatch error, got nil")
	}
}

func TestSub(t *testing.T) {
	v := New(2, 2, 1)
	o := New(2, 2, 1)
	for i := range v.Data {
		v.Data[i] = float64(i)
		o.Data[i] = 1.0
	}
	if err := v.Sub(o); err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	for i, x := range v.Data {
		if want := float64(i) - 1.0; x != want {
			t.Fatalf("Data[%d] = %v, want %v", i, x, want)
		}
	}
}

func TestClampNonNegative(t *testing.T) {
	v := New(2, 1, 1)
	v.Data[0] = -3.0
	v.Data[1] = 2.0

	v.ClampNonNegative()

	if v.Data[0] != 0 || v.Data[1] != 2.0 {
		t.Errorf("clamp produced %v, want [0 2]", v.Data)
	}
}

func TestHasNonFinite(t *testing.T) {
	v := New(2, 2, 1)
	if v.HasNonFinite() {
		t.Error("zero volume reported non-finite values")
	}

	v.Data[2] = math.NaN()
	if !v.HasNonFinite() {
		t.Error("NaN not detected")
	}

	v.Data[2] = math.Inf(1)
	if !v.HasNonFinite() {
		t.Error("Inf not detected")
	}
}

func TestResizeIdentity(t *testing.T) {
	v := New(4, 4, 4)
	for i := range v.Data {
		v.Data[i] = float64(i)
	}

	r := v.Resize(4, 4, 4)
	for i := range v.Data {
		if r.Data[i] != v.Data[i] {
			t.Fatalf("identity resize changed Data[%d]: %v != %v", i, r.Data[i], v.Data[i])
		}
	}
}

func TestResizeConstantVolume(t *testing.T) {
	v := New(4, 4, 4)
	for i := range v.Data {
		v.Data[i] = 7.0
	}

	r := v.Resize(8, 8, 8)
	if r.NX != 8 || r.NY != 8 || r.NZ != 8 {
		t.Fatalf("resized dims %dx%dx%d, want 8x8x8", r.NX, r.NY, r.NZ)
	}
	for i, x := range r.Data {
		if math.Abs(x-7.0) > 1e-12 {
			t.Fatalf("Data[%d] = %v, want 7.0 (trilinear interpolation of a constant)", i, x)
		}
	}
}

func TestSaveLoadRaw(t *testing.T) {
	v := New(3, 2, 2)
	for i := range v.Data {
		v.Data[i] = float64(i) * 0.5
	}

	path := filepath.Join(t.TempDir(), "vol.raw")
	if err := v.SaveRaw(path); err != nil {
		t.Fatalf("SaveRaw failed: %v", err)
	}

	got, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("LoadRaw failed: %v", err)
	}
	if !got.SameShape(v) {
		t.Fatalf("loaded dims %dx%dx%d, want %dx%dx%d",
			got.NX, got.NY, got.NZ, v.NX, v.NY, v.NZ)
	}
	for i := range v.Data {
		if got.Data[i] != v.Data[i] {
			t.Fatalf("Data[%d] = %v, want %v", i, got.Data[i], v.Data[i])
		}
	}
}

func TestFromSlice(t *testing.T) {
	if _, err := FromSlice(2, 2, 2, make([]float64, 7)); err == nil {
		t.Error("expected length mismatch error, got nil")
	}
	v, err := FromSlice(2, 2, 2, make([]float64, 8))
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if v.NX != 2 || len(v.Data) != 8 {
		t.Errorf("unexpected volume %dx%dx%d len %d", v.NX, v.NY, v.NZ, len(v.Data))
	}
}
