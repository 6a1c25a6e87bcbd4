package parser

// cursor is a random-access position over the input. Lookahead and
// backtracking are plain index arithmetic.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) eof() bool { return c.pos >= len(c.data) }

// peek returns the current byte, 0 at end of input.
func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.data[c.pos]
}

func (c *cursor) advance(n int) { c.pos += n }

func (c *cursor) seek(pos int) { c.pos = pos }

// cut returns the input between the cursor and end, clamped to the input.
func (c *cursor) cut(end int) string {
	if end > len(c.data) {
		end = len(c.data)
	}
	if end <= c.pos {
		return ""
	}
	return string(c.data[c.pos:end])
}

func (c *cursor) hasPrefix(s string) bool {
	return c.cut(c.pos+len(s)) == s
}

func (c *cursor) skipSpace() {
	for !c.eof() {
		switch c.data[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

// lineCol returns the 1-based line and column of the cursor.
func (c *cursor) lineCol() (line, col int) {
	line, col = 1, 1
	end := c.pos
	if end > len(c.data) {
		end = len(c.data)
	}
	for _, b := range c.data[:end] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
