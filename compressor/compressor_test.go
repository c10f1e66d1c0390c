package compressor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(t *testing.T) {
	tests := []struct {
		caption string
		entries []int
		cols    int
		err     bool
	}{
		{
			caption: "a 2x3 matrix",
			entries: []int{1, 2, 3, 4, 5, 6},
			cols:    3,
		},
		{
			caption: "no entries",
			entries: []int{},
			cols:    1,
			err:     true,
		},
		{
			caption: "no columns",
			entries: []int{1},
			cols:    0,
			err:     true,
		},
		{
			caption: "a ragged last row",
			entries: []int{1, 2, 3},
			cols:    2,
			err:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := NewMatrix(tt.entries, tt.cols)
			if tt.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompressor_Lookup(t *testing.T) {
	const x = ActionError
	tests := []struct {
		caption string
		entries []int
		cols    int
	}{
		{
			caption: "a single entry",
			entries: []int{1},
			cols:    1,
		},
		{
			caption: "empty rows only",
			entries: []int{
				x, x, x,
				x, x, x,
			},
			cols: 3,
		},
		{
			caption: "duplicated rows",
			entries: []int{
				1, x, -2,
				x, 4, x,
				1, x, -2,
			},
			cols: 3,
		},
		{
			caption: "sparse rows that interleave",
			entries: []int{
				1, x, x, x, 2,
				x, 3, x, 4, x,
				x, x, 5, x, x,
				6, x, x, x, x,
				x, x, x, x, x,
			},
			cols: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			orig := append([]int{}, tt.entries...)
			m, err := NewMatrix(tt.entries, tt.cols)
			require.NoError(t, err)

			for _, c := range []Compressor{NewUniqueRowsTable(), NewRowDisplacementTable(x)} {
				require.NoError(t, c.Compress(m))

				rows, cols := c.Dims()
				assert.Equal(t, len(tt.entries)/tt.cols, rows)
				assert.Equal(t, tt.cols, cols)
				for i := 0; i < rows; i++ {
					for j := 0; j < cols; j++ {
						v, err := c.Lookup(i, j)
						require.NoError(t, err)
						assert.Equal(t, tt.entries[i*cols+j], v, "[%v, %v]", i, j)
					}
				}

				_, err = c.Lookup(rows, 0)
				assert.Error(t, err)
				_, err = c.Lookup(0, cols)
				assert.Error(t, err)
				_, err = c.Lookup(-1, 0)
				assert.Error(t, err)
			}
			assert.Equal(t, orig, tt.entries, "compression must leave the matrix as it was")
		})
	}
}

func TestUniqueRowsTable_CompressedSize(t *testing.T) {
	m, err := NewMatrix([]int{
		1, 2,
		1, 2,
		3, 4,
		1, 2,
	}, 2)
	require.NoError(t, err)

	c := NewUniqueRowsTable()
	require.NoError(t, c.Compress(m))
	assert.Equal(t, []int{0, 0, 1, 0}, c.RowIndex)
	assert.Equal(t, 2*2+4, c.CompressedSize())
}

func TestRowDisplacementTable_Compress(t *testing.T) {
	const x = ActionError
	m, err := NewMatrix([]int{
		1, x, x, x,
		x, 2, x, x,
		x, x, 3, x,
		x, x, x, 4,
	}, 4)
	require.NoError(t, err)

	c := NewRowDisplacementTable(x)
	require.NoError(t, c.Compress(m))
	assert.Equal(t, []int{1, 2, 3, 4}, c.Entries)
	assert.Equal(t, []int{0, 0, 0, 0}, c.Offset)
}
