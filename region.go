package mandel

import (
	"context"
	"fmt"
	"math"
)

// PixelRegion is a half-open block of rows and columns.
type PixelRegion struct {
	StartRow, EndRow int
	StartCol, EndCol int
}

func (r PixelRegion) Rows() int { return r.EndRow - r.StartRow }
func (r PixelRegion) Cols() int { return r.EndCol - r.StartCol }

func (r PixelRegion) String() string {
	return fmt.Sprintf("rows[%d,%d) cols[%d,%d)", r.StartRow, r.EndRow, r.StartCol, r.EndCol)
}

// Partition splits height rows into n contiguous full-width strips.
// Strip heights differ by at most one row; the first height%n strips carry the extra row.
// With n > height the trailing strips are empty and sit at row height.
func Partition(height, width, n int) []PixelRegion {
	if n < 1 {
		n = 1
	}
	strip := height / n
	remainder := height % n

	regions := make([]PixelRegion, n)
	row := 0
	for i := range regions {
		h := strip
		if i < remainder {
			h++
		}
		end := min(row+h, height)
		regions[i] = PixelRegion{StartRow: row, EndRow: end, StartCol: 0, EndCol: width}
		row = end
	}
	return regions
}

// PixelMatrix holds iteration counts, one slice per row.
type PixelMatrix [][]uint32

// NewPixelMatrix allocates a rows×cols matrix backed by one contiguous slice.
func NewPixelMatrix(rows, cols int) PixelMatrix {
	backing := make([]uint32, rows*cols)
	m := make(PixelMatrix, rows)
	for r := range m {
		m[r] = backing[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return m
}

// Sub returns the rows of m covered by region. The result aliases m.
func (m PixelMatrix) Sub(region PixelRegion) PixelMatrix {
	return m[region.StartRow:region.EndRow]
}

// ComputeRegion evaluates every pixel of region into a freshly allocated matrix.
func ComputeRegion(ctx context.Context, v Viewport, s RenderSettings, region PixelRegion) (PixelMatrix, error) {
	start := min(region.StartRow, s.Height)
	end := min(region.EndRow, s.Height)
	m := NewPixelMatrix(max(end-start, 0), s.Width)
	if err := ComputeRegionInto(ctx, m, v, s, region); err != nil {
		return nil, err
	}
	return m, nil
}

// ComputeRegionInto evaluates region into dst, where dst[0] is region.StartRow.
// Rows past s.Height are clamped away. ctx is checked between rows.
func ComputeRegionInto(ctx context.Context, dst PixelMatrix, v Viewport, s RenderSettings, region PixelRegion) error {
	start := min(region.StartRow, s.Height)
	end := min(region.EndRow, s.Height)
	colStart := min(region.StartCol, s.Width)
	colEnd := min(region.EndCol, s.Width)
	if len(dst) < end-start {
		return &ComputationError{Region: region, Err: fmt.Errorf("destination has %d rows, need %d", len(dst), end-start)}
	}

	for r := start; r < end; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := dst[r-start]
		if len(row) < colEnd {
			return &ComputationError{Region: region, Err: fmt.Errorf("row %d has %d columns, need %d", r, len(row), colEnd)}
		}
		if colEnd > colStart {
			first := PixelToComplex(colStart, r, v, s.Width, s.Height)
			last := PixelToComplex(colEnd-1, r, v, s.Width, s.Height)
			if !finite(first) || !finite(last) {
				return &ComputationError{Region: region, Err: fmt.Errorf("row %d maps to non-finite point %v", r, first)}
			}
		}
		for c := colStart; c < colEnd; c++ {
			p := PixelToComplex(c, r, v, s.Width, s.Height)
			row[c] = Iterations(p, s.MaxIterations, s.EscapeRadius)
		}
	}
	return nil
}

func finite(c complex128) bool {
	return !math.IsNaN(real(c)) && !math.IsInf(real(c), 0) &&
		!math.IsNaN(imag(c)) && !math.IsInf(imag(c), 0)
}
