package skin

import (
	"errors"
	"fmt"
	"math"
)

// ErrWeightRange is returned for a weight that is not a finite value in [0, 1].
var ErrWeightRange = errors.New("skin: weight out of range")

// ErrIndexRange is returned for a row or column outside the table.
var ErrIndexRange = errors.New("skin: index out of range")

// WeightTable is a dense rows×cols matrix of blend weights, rows indexed by
// vertex handle and columns by bone handle. Unset cells are 0. Rows are not
// normalized by the table.
type WeightTable struct {
	rows, cols int
	data       []float64
}

// NewWeightTable allocates a zeroed table sized for the worst case.
func NewWeightTable(rows, cols int) *WeightTable {
	return &WeightTable{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// Dims returns the number of rows and columns.
func (t *WeightTable) Dims() (int, int) { return t.rows, t.cols }

func (t *WeightTable) inRange(row, col int) bool {
	return row >= 0 && row < t.rows && col >= 0 && col < t.cols
}

// Set stores w at (row, col).
func (t *WeightTable) Set(row, col int, w float64) error {
	if !t.inRange(row, col) {
		return fmt.Errorf("skin: set (%d,%d): %w", row, col, ErrIndexRange)
	}
	if math.IsNaN(w) || w < 0 || w > 1 {
		return fmt.Errorf("skin: set (%d,%d)=%v: %w", row, col, w, ErrWeightRange)
	}
	t.data[row*t.cols+col] = w
	return nil
}

// Get returns the weight at (row, col); out-of-range cells read as 0.
func (t *WeightTable) Get(row, col int) float64 {
	if !t.inRange(row, col) {
		return 0
	}
	return t.data[row*t.cols+col]
}

// Row returns the backing slice for one row. Callers must not keep it across
// mutations of the table.
func (t *WeightTable) Row(row int) []float64 {
	if row < 0 || row >= t.rows {
		return nil
	}
	return t.data[row*t.cols : (row+1)*t.cols]
}

// RowSum returns the total weight of a row.
func (t *WeightTable) RowSum(row int) float64 {
	var sum float64
	for _, w := range t.Row(row) {
		sum += w
	}
	return sum
}

// ClearRow zeroes every weight of a row.
func (t *WeightTable) ClearRow(row int) {
	r := t.Row(row)
	for i := range r {
		r[i] = 0
	}
}

// ClearColumn zeroes one column across every row.
func (t *WeightTable) ClearColumn(col int) {
	if col < 0 || col >= t.cols {
		return
	}
	for r := 0; r < t.rows; r++ {
		t.data[r*t.cols+col] = 0
	}
}

// Normalize scales a row so it sums to 1. A zero row is left untouched and
// reported as false.
func (t *WeightTable) Normalize(row int) bool {
	sum := t.RowSum(row)
	if sum == 0 {
		return false
	}
	r := t.Row(row)
	for i := range r {
		r[i] /= sum
	}
	return true
}
