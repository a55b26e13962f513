package transcript

import (
	"iter"
	"slices"
	"strings"
)

// Coalescer merges time ordered segments separated by at most Gap seconds.
// It holds at most one candidate at a time. Input order is trusted and never
// sorted.
type Coalescer struct {
	Gap float64

	held    Segment
	holding bool
}

// Push feeds the next segment. When it cannot be merged into the held
// candidate, the candidate is returned as finished and seg becomes the new
// candidate.
func (c *Coalescer) Push(seg Segment) (Segment, bool) {
	if !c.holding {
		c.hold(seg)
		return Segment{}, false
	}
	if seg.Start-c.held.End <= c.Gap {
		c.held.End = seg.End
		c.held.Text = MergeText(c.held.Text, seg.Text)
		c.held.Words = append(c.held.Words, seg.Words...)
		return Segment{}, false
	}
	done := c.held
	c.hold(seg)
	return done, true
}

// Flush returns the held candidate, if any, and resets the coalescer.
func (c *Coalescer) Flush() (Segment, bool) {
	if !c.holding {
		return Segment{}, false
	}
	done := c.held
	c.held = Segment{}
	c.holding = false
	return done, true
}

func (c *Coalescer) hold(seg Segment) {
	seg.Words = slices.Clone(seg.Words)
	c.held = seg
	c.holding = true
}

// Coalesce applies a Coalescer over seq.
func Coalesce(seq iter.Seq[Segment], gap float64) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		c := Coalescer{Gap: gap}
		for seg := range seq {
			if done, ok := c.Push(seg); ok {
				if !yield(done) {
					return
				}
			}
		}
		if done, ok := c.Flush(); ok {
			yield(done)
		}
	}
}

// MergeText joins two text fragments with a single space unless text already
// ends with one or other already starts with one.
func MergeText(text, other string) string {
	if !strings.HasSuffix(text, " ") && !strings.HasPrefix(other, " ") {
		return text + " " + other
	}
	return text + other
}
