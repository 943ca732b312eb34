package layout

import (
	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/bits"
	"github.com/wippyai/packplan/schema"
)

// Item is one field of a block layout: the data values (Token) or a
// header holding a parameter value.
type Item struct {
	Name  string
	Token bool
}

// Layout is the resolved field order of one block.
type Layout struct {
	Items   []Item
	Token   int // index of the data item
	Aligned bool
}

// Of validates a combiner and returns its field order. Parameter items
// must name a parameter declared by the owning loop.
func Of(c schema.Combiner, declared []string, path []string) (Layout, error) {
	if c.Tracks > 1 {
		return Layout{}, errors.Unsupported(errors.PhaseCompile, path, "multi-track combiner")
	}

	var items []schema.Expr
	switch v := c.Layout.(type) {
	case nil:
		return Layout{}, errors.Schema(path, "combiner has no layout")
	case schema.Token:
		items = []schema.Expr{v}
	case schema.Concat:
		items = v.Items
	default:
		return Layout{}, errors.Schema(path, "combiner layout must be token or concat, got %s", v.String())
	}

	l := Layout{Items: make([]Item, 0, len(items)), Token: -1, Aligned: c.Aligned}
	for i, it := range items {
		switch v := it.(type) {
		case schema.Token:
			if l.Token >= 0 {
				return Layout{}, errors.Schema(path, "token appears more than once in layout")
			}
			l.Token = i
			l.Items = append(l.Items, Item{Token: true})
		case schema.Param:
			if !contains(declared, v.Name) {
				return Layout{}, errors.Unresolved(path, v.Name)
			}
			l.Items = append(l.Items, Item{Name: v.Name})
		default:
			return Layout{}, errors.Schema(path, "layout item %s is neither token nor a parameter", exprString(it))
		}
	}
	if l.Token < 0 {
		return Layout{}, errors.Schema(path, "layout does not place the data values")
	}
	return l, nil
}

// Header returns the index of the first header holding name before the
// data item, or -1.
func (l Layout) Header(name string) int {
	for i := 0; i < l.Token; i++ {
		if l.Items[i].Name == name {
			return i
		}
	}
	return -1
}

// Offset returns the bit offset of item i from the block start, given the
// widths of the header items. Widths of data items are ignored, so i must
// not be past the data item.
func (l Layout) Offset(i int, width func(name string) (int, error)) (int, error) {
	off := 0
	for j := 0; j < i && j < l.Token; j++ {
		w, err := width(l.Items[j].Name)
		if err != nil {
			return 0, err
		}
		off += w
	}
	return off, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func exprString(e schema.Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// Align rounds a bit position up to the next word boundary.
func Align(pos, wordBits int) int {
	return int(bits.AlignTo(uint(pos), uint(wordBits)))
}

// Words returns the number of words touched by n bits.
func Words(n, wordBits int) int {
	if n <= 0 {
		return 0
	}
	return bits.CeilDiv(n, wordBits)
}
