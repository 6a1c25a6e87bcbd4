package vario

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxDepth bounds the nesting of arrays and objects a reader accepts.
const MaxDepth = 10000

// Context tracks where a recursive read is inside the value tree so that
// errors can name the offending location.
type Context struct {
	// Sysroot resolves relative paths of file commands.
	Sysroot string

	frames []string
}

// NewContext returns an empty context rooted at sysroot.
func NewContext(sysroot string) *Context {
	return &Context{Sysroot: sysroot}
}

// PushIndex descends into array element i.
func (c *Context) PushIndex(i int) {
	c.frames = append(c.frames, "["+strconv.Itoa(i)+"]")
}

// PushKey descends into object field key.
func (c *Context) PushKey(key string) {
	c.frames = append(c.frames, "."+key)
}

// Pop leaves the innermost frame.
func (c *Context) Pop() {
	if len(c.frames) > 0 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

// Depth returns the number of pushed frames.
func (c *Context) Depth() int { return len(c.frames) }

// CheckDepth fails with kind once the breadcrumb is MaxDepth frames deep.
func (c *Context) CheckDepth(kind error) error {
	if len(c.frames) >= MaxDepth {
		return c.Errorf(kind, "nesting deeper than %d levels", MaxDepth)
	}
	return nil
}

// Path renders the breadcrumb, "<>" for the root.
func (c *Context) Path() string {
	if c == nil {
		return "<>"
	}
	var b strings.Builder
	b.WriteString("<>")
	for _, f := range c.frames {
		b.WriteString(f)
	}
	return b.String()
}

// Errorf builds an IOError at the current location.
func (c *Context) Errorf(kind error, format string, args ...any) *IOError {
	return &IOError{Kind: kind, Path: c.Path(), Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an IOError at the current location around cause.
func (c *Context) Wrap(kind error, cause error, format string, args ...any) *IOError {
	return &IOError{Kind: kind, Path: c.Path(), Msg: fmt.Sprintf(format, args...), Err: cause}
}
