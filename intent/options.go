package intent

import "github.com/goliatone/go-formstate/fieldpath"

// DefaultMaxIndex is the largest list index an intent may carry when no
// WithMaxIndex option is given.
const DefaultMaxIndex = 1000

// Option bounds what Recognize, Parse and Apply accept.
type Option func(*limits)

type limits struct {
	maxIndex int
}

// WithMaxIndex sets the largest list index accepted in intent payloads and in
// the names they address. Apply also uses it as the largest gap it will open
// past the end of a list. Values below one keep DefaultMaxIndex.
func WithMaxIndex(n int) Option {
	return func(l *limits) {
		if n > 0 {
			l.maxIndex = n
		}
	}
}

func newLimits(opts []Option) limits {
	l := limits{maxIndex: DefaultMaxIndex}
	for _, opt := range opts {
		if opt != nil {
			opt(&l)
		}
	}
	return l
}

// nameWithin reports whether every index in name is at most maxIndex.
func (l limits) nameWithin(name string) bool {
	for _, segment := range fieldpath.Parse(name) {
		if segment.IsIndex() && segment.Index() > l.maxIndex {
			return false
		}
	}
	return true
}
