package compressor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Matrix is a dense row-major table of encoded entries.
type Matrix struct {
	entries []int
	rows    int
	cols    int
}

func NewMatrix(entries []int, cols int) (*Matrix, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("a matrix needs at least one entry")
	}
	if cols <= 0 {
		return nil, fmt.Errorf("a matrix needs at least one column; got: %v", cols)
	}
	if len(entries)%cols != 0 {
		return nil, fmt.Errorf("%v entries don't fill rows of %v columns", len(entries), cols)
	}
	return &Matrix{
		entries: entries,
		rows:    len(entries) / cols,
		cols:    cols,
	}, nil
}

func (m *Matrix) row(r int) []int {
	return m.entries[r*m.cols : (r+1)*m.cols]
}

// Compressor is a lossless compression of a matrix. The report uses it to show how much a tabular
// layout could shrink.
type Compressor interface {
	Compress(m *Matrix) error
	Lookup(row, col int) (int, error)
	Dims() (int, int)
	CompressedSize() int
}

var (
	_ Compressor = &UniqueRowsTable{}
	_ Compressor = &RowDisplacementTable{}
)

func checkIndexes(row, col, rows, cols int) error {
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return nil
}

// UniqueRowsTable stores each distinct row once. States sharing their actions and gotos share a
// row.
type UniqueRowsTable struct {
	Rows     []int
	RowIndex []int
	rows     int
	cols     int
}

func NewUniqueRowsTable() *UniqueRowsTable {
	return &UniqueRowsTable{}
}

func (t *UniqueRowsTable) Compress(m *Matrix) error {
	t.rows = m.rows
	t.cols = m.cols
	t.Rows = nil
	t.RowIndex = make([]int, m.rows)

	seen := map[string]int{}
	for r := 0; r < m.rows; r++ {
		row := m.row(r)
		key := rowKey(row)
		idx, ok := seen[key]
		if !ok {
			idx = len(t.Rows) / m.cols
			seen[key] = idx
			t.Rows = append(t.Rows, row...)
		}
		t.RowIndex[r] = idx
	}
	return nil
}

func rowKey(row []int) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(strconv.Itoa(v))
		b.WriteByte(',')
	}
	return b.String()
}

func (t *UniqueRowsTable) Lookup(row, col int) (int, error) {
	if err := checkIndexes(row, col, t.rows, t.cols); err != nil {
		return 0, err
	}
	return t.Rows[t.RowIndex[row]*t.cols+col], nil
}

func (t *UniqueRowsTable) Dims() (int, int) {
	return t.rows, t.cols
}

func (t *UniqueRowsTable) CompressedSize() int {
	return len(t.Rows) + len(t.RowIndex)
}

const noOwner = -1

// RowDisplacementTable overlays the non-empty entries of all rows in one vector. Owner records
// the row each slot belongs to, so a lookup that lands on a slot of another row yields EmptyValue.
type RowDisplacementTable struct {
	EmptyValue int
	Entries    []int
	Owner      []int
	Offset     []int
	rows       int
	cols       int
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

// Compress places the densest rows first, each at the lowest offset where its entries land on
// free slots.
func (t *RowDisplacementTable) Compress(m *Matrix) error {
	t.rows = m.rows
	t.cols = m.cols
	t.Offset = make([]int, m.rows)

	used := make([][]int, m.rows)
	order := make([]int, m.rows)
	for r := 0; r < m.rows; r++ {
		order[r] = r
		for c, v := range m.row(r) {
			if v != t.EmptyValue {
				used[r] = append(used[r], c)
			}
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(used[order[i]]) > len(used[order[j]])
	})

	entries := make([]int, 0, len(m.entries))
	owner := make([]int, 0, len(m.entries))
	grow := func(n int) {
		for len(entries) < n {
			entries = append(entries, t.EmptyValue)
			owner = append(owner, noOwner)
		}
	}
	fits := func(offset int, cols []int) bool {
		for _, c := range cols {
			if offset+c < len(owner) && owner[offset+c] != noOwner {
				return false
			}
		}
		return true
	}

	for _, r := range order {
		cols := used[r]
		if len(cols) == 0 {
			continue
		}
		offset := 0
		for !fits(offset, cols) {
			offset++
		}
		grow(offset + m.cols)
		for _, c := range cols {
			entries[offset+c] = m.row(r)[c]
			owner[offset+c] = r
		}
		t.Offset[r] = offset
	}
	if len(entries) < m.cols {
		grow(m.cols)
	}

	t.Entries = entries
	t.Owner = owner
	return nil
}

func (t *RowDisplacementTable) Lookup(row, col int) (int, error) {
	if err := checkIndexes(row, col, t.rows, t.cols); err != nil {
		return t.EmptyValue, err
	}
	i := t.Offset[row] + col
	if t.Owner[i] != row {
		return t.EmptyValue, nil
	}
	return t.Entries[i], nil
}

func (t *RowDisplacementTable) Dims() (int, int) {
	return t.rows, t.cols
}

func (t *RowDisplacementTable) CompressedSize() int {
	return len(t.Entries) + len(t.Owner) + len(t.Offset)
}
