package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_PlainAdvance(t *testing.T) {
	tr := NewTracker()
	end := tr.Advance([]rune("abc"))

	assert.Equal(t, uint64(1), end.Line())
	assert.Equal(t, uint64(4), end.Column())
	assert.Equal(t, uint64(3), end.Index())
}

func TestTracker_LF(t *testing.T) {
	tr := NewTracker()
	end := tr.Advance([]rune("a\nb"))

	assert.Equal(t, uint64(2), end.Line())
	assert.Equal(t, uint64(2), end.Column())
	assert.Equal(t, uint64(3), end.Index())
}

func TestTracker_CR(t *testing.T) {
	tr := NewTracker()
	end := tr.Advance([]rune("a\rb"))

	assert.Equal(t, uint64(2), end.Line())
	assert.Equal(t, uint64(2), end.Column())
}

func TestTracker_CRLFCountsAsOneBreak(t *testing.T) {
	tr := NewTracker()
	end := tr.Advance([]rune("a\r\nb"))

	// a at (1,1), \r\n is one break, b at (2,1); the end position is (2,2)
	assert.Equal(t, uint64(2), end.Line())
	assert.Equal(t, uint64(2), end.Column())
	assert.Equal(t, uint64(4), end.Index())
}

func TestTracker_CRLFSplitAcrossAdvanceCalls(t *testing.T) {
	tr := NewTracker()
	tr.Advance([]rune("a\r"))
	end := tr.Advance([]rune("\nb"))

	assert.Equal(t, uint64(2), end.Line())
	assert.Equal(t, uint64(2), end.Column())
}

func TestTracker_IndexRoundTrip(t *testing.T) {
	// advancing by a span of N characters increases index by exactly N,
	// whether done in one call or rune by rune.
	span := []rune("ab\r\ncd\nef\rgh")

	bulk := NewTracker()
	bulkEnd := bulk.Advance(span)

	oneByOne := NewTracker()
	var last Position
	for _, r := range span {
		last = oneByOne.AdvanceRune(r)
	}

	assert.Equal(t, bulkEnd, last)
	assert.Equal(t, uint64(len(span)), bulkEnd.Index())
}

func TestTracker_PeekAdvanceDoesNotMutate(t *testing.T) {
	tr := NewTracker()
	tr.Advance([]rune("ab"))
	before := tr.Current()

	peeked := tr.PeekAdvance([]rune("cd\n"))

	assert.Equal(t, before, tr.Current())
	assert.NotEqual(t, before, peeked)
}
