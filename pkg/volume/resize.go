package volume

// Resize returns a copy of the volume resampled to the given dimensions
// using trilinear interpolation. Resizing to the same dimensions returns a
// plain clone. Used by the multigrid initialization to lift a coarse-grid
// solution onto the full reconstruction grid.
func (v *Volume) Resize(nx, ny, nz int) *Volume {
	if nx == v.NX && ny == v.NY && nz == v.NZ {
		return v.Clone()
	}

	out := New(nx, ny, nz)
	sx := scaleFactor(v.NX, nx)
	sy := scaleFactor(v.NY, ny)
	sz := scaleFactor(v.NZ, nz)

	for z := 0; z < nz; z++ {
		fz := float64(z) * sz
		z0, z1, wz := sampleAxis(fz, v.NZ)
		for y := 0; y < ny; y++ {
			fy := float64(y) * sy
			y0, y1, wy := sampleAxis(fy, v.NY)
			for x := 0; x < nx; x++ {
				fx := float64(x) * sx
				x0, x1, wx := sampleAxis(fx, v.NX)

				c00 := v.At(x0, y0, z0)*(1-wx) + v.At(x1, y0, z0)*wx
				c10 := v.At(x0, y1, z0)*(1-wx) + v.At(x1, y1, z0)*wx
				c01 := v.At(x0, y0, z1)*(1-wx) + v.At(x1, y0, z1)*wx
				c11 := v.At(x0, y1, z1)*(1-wx) + v.At(x1, y1, z1)*wx

				c0 := c00*(1-wy) + c10*wy
				c1 := c01*(1-wy) + c11*wy
				out.Set(x, y, z, c0*(1-wz)+c1*wz)
			}
		}
	}
	return out
}

func scaleFactor(src, dst int) float64 {
	if dst <= 1 {
		return 0
	}
	return float64(src-1) / float64(dst-1)
}

// sampleAxis maps a fractional source coordinate to its two neighbouring
// indices and the interpolation weight of the upper one.
func sampleAxis(f float64, n int) (lo, hi int, w float64) {
	lo = int(f)
	if lo >= n-1 {
		return n - 1, n - 1, 0
	}
	return lo, lo + 1, f - float64(lo)
}
