// Package textpos converts between line/column positions and byte offsets.
//
// Columns are UTF-8 byte counts unless a function says otherwise. Only '\n'
// starts a new line; a '\r' directly before it belongs to the line terminator
// and is never addressable as a column.
package textpos

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ByteOffset returns the byte offset of line/col in text. The column is
// clamped to the byte length of the line and a line past the end of the text
// maps to len(text).
func ByteOffset(text string, line, col uint32) uint32 {
	var offset int
	for row := uint32(0); ; row++ {
		end := offset
		for end < len(text) && text[end] != '\n' {
			end++
		}
		if row == line {
			content := end
			if content > offset && text[content-1] == '\r' && content < len(text) {
				content--
			}
			if int(col) > content-offset {
				return uint32(content)
			}
			return uint32(offset) + col
		}
		if end >= len(text) {
			return uint32(len(text))
		}
		offset = end + 1
	}
}

// PointAt scans text up to offset and returns the row and byte column there.
// Offsets past the end of text are treated as len(text).
func PointAt(text string, offset uint32) (row, col uint32) {
	if int(offset) > len(text) {
		offset = uint32(len(text))
	}
	for i := 0; i < int(offset); i++ {
		if text[i] == '\n' {
			row++
			col = 0
			continue
		}
		col++
	}
	return row, col
}

// Advance returns the point reached after inserting inserted at row/col.
func Advance(row, col uint32, inserted string) (uint32, uint32) {
	for i := 0; i < len(inserted); i++ {
		if inserted[i] == '\n' {
			row++
			col = 0
			continue
		}
		col++
	}
	return row, col
}

// LineText returns the content of line row without its terminator, or ""
// when the row does not exist.
func LineText(text string, row uint32) string {
	for r := uint32(0); ; r++ {
		end := strings.IndexByte(text, '\n')
		if r == row {
			if end < 0 {
				return text
			}
			return strings.TrimSuffix(text[:end], "\r")
		}
		if end < 0 {
			return ""
		}
		text = text[end+1:]
	}
}

// UTF16ToByteColumn converts a column counted in UTF-16 code units into a
// byte column within line. Columns inside a surrogate pair or past the end of
// the line are clamped.
func UTF16ToByteColumn(line string, units uint32) uint32 {
	var seen uint32
	for i, r := range line {
		width := uint32(1)
		if r >= 0x10000 {
			width = 2
		}
		if seen+width > units {
			return uint32(i)
		}
		seen += width
	}
	return uint32(len(line))
}

// ByteToUTF16Column converts a byte column within line into UTF-16 code
// units.
func ByteToUTF16Column(line string, col uint32) uint32 {
	if int(col) > len(line) {
		col = uint32(len(line))
	}
	var units uint32
	prefix := line[:col]
	for len(prefix) > 0 {
		r, size := utf8.DecodeRuneInString(prefix)
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		prefix = prefix[size:]
	}
	return units
}

// LineIndex answers offset -> point lookups for a fixed source in
// logarithmic time.
type LineIndex struct {
	starts []uint32
	size   uint32
}

// NewLineIndex records the start offset of every line in src.
func NewLineIndex(src []byte) *LineIndex {
	starts := []uint32{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &LineIndex{starts: starts, size: uint32(len(src))}
}

// Point returns the row and byte column of offset.
func (li *LineIndex) Point(offset uint32) (row, col uint32) {
	if offset > li.size {
		offset = li.size
	}
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return uint32(i), offset - li.starts[i]
}

// Lines returns the number of lines, counting a trailing empty line.
func (li *LineIndex) Lines() int {
	return len(li.starts)
}
