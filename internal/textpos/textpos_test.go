package textpos_test

import (
	"testing"

	"github.com/a-k-l-sdao/rholang-lsp/internal/textpos"
)

func TestByteOffset(t *testing.T) {
	text := "ab\r\nçd\nlast"
	tests := []struct {
		name      string
		line, col uint32
		want      uint32
	}{
		{"start", 0, 0, 0},
		{"inside first line", 0, 1, 1},
		{"column clamped before carriage return", 0, 10, 2},
		{"second line start", 1, 0, 4},
		{"multi-byte rune counts bytes", 1, 2, 6},
		{"clamped to second line end", 1, 99, 7},
		{"last line", 2, 4, 12},
		{"line past end", 7, 0, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textpos.ByteOffset(text, tt.line, tt.col); got != tt.want {
				t.Errorf("ByteOffset(%d, %d) = %d, want %d", tt.line, tt.col, got, tt.want)
			}
		})
	}
}

func TestPointAtAndAdvance(t *testing.T) {
	text := "one\ntwo\nthree"
	row, col := textpos.PointAt(text, 9)
	if row != 2 || col != 1 {
		t.Errorf("PointAt(9) = %d:%d, want 2:1", row, col)
	}
	row, col = textpos.PointAt(text, 100)
	if row != 2 || col != 5 {
		t.Errorf("PointAt past end = %d:%d, want 2:5", row, col)
	}

	row, col = textpos.Advance(3, 4, "x\nyz")
	if row != 4 || col != 2 {
		t.Errorf("Advance = %d:%d, want 4:2", row, col)
	}
	row, col = textpos.Advance(3, 4, "abc")
	if row != 3 || col != 7 {
		t.Errorf("Advance without newline = %d:%d, want 3:7", row, col)
	}
}

func TestLineText(t *testing.T) {
	text := "a\r\nb\n\nc"
	for row, want := range []string{"a", "b", "", "c", ""} {
		if got := textpos.LineText(text, uint32(row)); got != want {
			t.Errorf("LineText(%d) = %q, want %q", row, got, want)
		}
	}
}

func TestUTF16Columns(t *testing.T) {
	line := "a😀é!"
	tests := []struct {
		units, bytes uint32
	}{
		{0, 0},
		{1, 1},
		{3, 5},
		{4, 7},
		{5, 8},
	}
	for _, tt := range tests {
		if got := textpos.UTF16ToByteColumn(line, tt.units); got != tt.bytes {
			t.Errorf("UTF16ToByteColumn(%d) = %d, want %d", tt.units, got, tt.bytes)
		}
		if got := textpos.ByteToUTF16Column(line, tt.bytes); got != tt.units {
			t.Errorf("ByteToUTF16Column(%d) = %d, want %d", tt.bytes, got, tt.units)
		}
	}
	if got := textpos.UTF16ToByteColumn(line, 2); got != 1 {
		t.Errorf("column inside a surrogate pair = %d, want 1", got)
	}
	if got := textpos.UTF16ToByteColumn(line, 99); got != uint32(len(line)) {
		t.Errorf("column past end = %d, want %d", got, len(line))
	}
}

func TestLineIndex(t *testing.T) {
	src := []byte("ab\ncd\n")
	li := textpos.NewLineIndex(src)
	if li.Lines() != 3 {
		t.Errorf("Lines = %d, want 3", li.Lines())
	}
	for offset, want := range [][2]uint32{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}, {2, 0}} {
		row, col := li.Point(uint32(offset))
		if row != want[0] || col != want[1] {
			t.Errorf("Point(%d) = %d:%d, want %d:%d", offset, row, col, want[0], want[1])
		}
	}
}
