package transcript

import "iter"

// Split re-divides segments lasting threshold seconds or more at word
// boundaries so that each part fits the budget. Shorter segments pass through
// unchanged. A word is never divided, so a single word longer than threshold
// yields one over budget segment. Segments without words cannot be divided and
// pass through as well.
func Split(seq iter.Seq[Segment], threshold float64) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for seg := range seq {
			if seg.Duration() < threshold || len(seg.Words) == 0 {
				if !yield(seg) {
					return
				}
				continue
			}
			for part := range splitWords(seg.Words, threshold) {
				if !yield(part) {
					return
				}
			}
		}
	}
}

func splitWords(words []Word, threshold float64) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		if len(words) == 0 {
			return
		}
		part := singleWordSegment(words[0])
		for _, word := range words[1:] {
			if word.End-part.Start > threshold {
				if !yield(part) {
					return
				}
				part = singleWordSegment(word)
				continue
			}
			part.End = word.End
			part.Text = MergeText(part.Text, word.Text)
			part.Words = append(part.Words, word)
		}
		yield(part)
	}
}

func singleWordSegment(word Word) Segment {
	return Segment{
		Start: word.Start,
		End:   word.End,
		Text:  word.Text,
		Words: []Word{word},
	}
}
