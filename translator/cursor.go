package translator

import (
	"io"
)

// Cursor reads characters one at a time and keeps track of the position of the current one.
type Cursor struct {
	r   io.RuneReader
	cur rune
	eof bool
	err error
	row int
	col int
}

// NewCursor reads the first character. row is the row of the first character in its source.
func NewCursor(r io.RuneReader, row int) *Cursor {
	c := &Cursor{
		r:   r,
		row: row,
	}
	c.read()
	c.col = 1
	return c
}

func (c *Cursor) read() {
	if c.eof {
		return
	}
	ch, _, err := c.r.ReadRune()
	if err != nil {
		if err != io.EOF {
			c.err = err
		}
		c.eof = true
		c.cur = 0
		return
	}
	c.cur = ch
}

func (c *Cursor) Current() rune {
	return c.cur
}

// Next moves to the next character and returns it.
func (c *Cursor) Next() rune {
	if c.eof {
		return 0
	}
	if c.cur == '\n' {
		c.row++
		c.col = 0
	}
	c.read()
	c.col++
	return c.cur
}

func (c *Cursor) EOF() bool {
	return c.eof
}

// Err returns the read error that ended the input, if any.
func (c *Cursor) Err() error {
	return c.err
}

func (c *Cursor) Row() int {
	return c.row
}

func (c *Cursor) Col() int {
	return c.col
}
