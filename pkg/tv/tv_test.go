package tv

import (
	"math"
	"math/rand"
	"testing"

	"tomorecon/pkg/volume"
)

func totalVariation(v *volume.Volume) float64 {
	tv := 0.0
	for z := 0; z < v.NZ; z++ {
		for y := 0; y < v.NY; y++ {
			for x := 0; x < v.NX; x++ {
				c := v.At(x, y, z)
				if x+1 < v.NX {
					tv += math.Abs(v.At(x+1, y, z) - c)
				}
				if y+1 < v.NY {
					tv += math.Abs(v.At(x, y+1, z) - c)
				}
				if z+1 < v.NZ {
					tv += math.Abs(v.At(x, y, z+1) - c)
				}
			}
		}
	}
	return tv
}

func TestConstantVolumeIsFixedPoint(t *testing.T) {
	v := volume.New(4, 4, 4)
	for i := range v.Data {
		v.Data[i] = 3.0
	}

	d := NewGradientDescent()
	out, err := d.Denoise(v, 20, 0.1)
	if err != nil {
		t.Fatalf("Denoise failed: %v", err)
	}
	for i, x := range out.Data {
		if math.Abs(x-3.0) > 1e-9 {
			t.Fatalf("Data[%d] = %v, want 3.0 (constant volumes must be fixed points)", i, x)
		}
	}
}

func TestDenoiseReducesTotalVariation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := volume.New(8, 8, 8)
	for i := range v.Data {
		v.Data[i] = rng.NormFloat64()
	}
	before := totalVariation(v)

	d := NewGradientDescent()
	out, err := d.Denoise(v, 20, 0.5)
	if err != nil {
		t.Fatalf("Denoise failed: %v", err)
	}
	after := totalVariation(out)

	if after >= before {
		t.Errorf("total variation did not decrease: before %v, after %v", before, after)
	}
	if out.HasNonFinite() {
		t.Error("denoised volume contains non-finite values")
	}
}

func TestDenoiseDoesNotModifyInput(t *testing.T) {
	v := volume.New(3, 3, 3)
	v.Set(1, 1, 1, 10.0)
	want := v.Clone()

	d := NewGradientDescent()
	if _, err := d.Denoise(v, 5, 0.3); err != nil {
		t.Fatalf("Denoise failed: %v", err)
	}
	for i := range v.Data {
		if v.Data[i] != want.Data[i] {
			t.Fatalf("input modified at %d: %v != %v", i, v.Data[i], want.Data[i])
		}
	}
}

func TestDenoiseRejectsInvalidArgs(t *testing.T) {
	v := volume.New(2, 2, 2)
	d := NewGradientDescent()

	if _, err := d.Denoise(v, -1, 0.1); err == nil {
		t.Error("expected error for negative iterations")
	}
	if _, err := d.Denoise(v, 5, -0.1); err == nil {
		t.Error("expected error for negative strength")
	}
}

func TestIdentityDenoiser(t *testing.T) {
	v := volume.New(2, 2, 2)
	v.Data[3] = 4.0

	out, err := Identity{}.Denoise(v, 100, 5.0)
	if err != nil {
		t.Fatalf("Denoise failed: %v", err)
	}
	if out == v {
		t.Fatal("identity denoiser must return a copy, not the input")
	}
	for i := range v.Data {
		if out.Data[i] != v.Data[i] {
			t.Fatalf("Data[%d] = %v, want %v", i, out.Data[i], v.Data[i])
		}
	}
}
