package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// Raw volume files start with the three dimensions as little-endian int32,
// followed by the voxel data as little-endian float64 in storage order.

// SaveRaw writes the volume to path in the raw binary format.
func (v *Volume) SaveRaw(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("volume: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	dims := []int32{int32(v.NX), int32(v.NY), int32(v.NZ)}
	if err := binary.Write(w, binary.LittleEndian, dims); err != nil {
		return fmt.Errorf("volume: write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, v.Data); err != nil {
		return fmt.Errorf("volume: write data: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("volume: flush %s: %w", path, err)
	}
	return nil
}

// LoadRaw reads a volume previously written by SaveRaw.
func LoadRaw(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("volume: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	dims := make([]int32, 3)
	if err := binary.Read(r, binary.LittleEndian, dims); err != nil {
		return nil, fmt.Errorf("volume: read header: %w", err)
	}
	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 {
		return nil, fmt.Errorf("volume: invalid dimensions %dx%dx%d in %s",
			dims[0], dims[1], dims[2], path)
	}

	v := New(int(dims[0]), int(dims[1]), int(dims[2]))
	if err := binary.Read(r, binary.LittleEndian, v.Data); err != nil {
		return nil, fmt.Errorf("volume: read data: %w", err)
	}
	return v, nil
}
