// Package stream implements the buffered, rewindable character source the
// tokenizer scans (C2 in the design). A CharStream wraps either a static
// rune slice or a pull-based io.Reader behind the same cursor-based API,
// grounded on the reference ictiobus lexer's regexReader: grow-on-demand
// buffering with a cursor, rather than copying the whole input up front.
package stream

import (
	"bufio"
	"io"

	"github.com/brackwater/weir/ferr"
	"github.com/brackwater/weir/position"
)

// Context is passed to a token transformer: the token's start/end Position
// and a handle onto the stream's per-parse object store.
type Context struct {
	Start position.Position
	End   position.Position

	store *map[string]any
}

// Get reads a value previously Set in this stream's object store.
func (c Context) Get(key string) (any, bool) {
	if *c.store == nil {
		return nil, false
	}
	v, ok := (*c.store)[key]
	return v, ok
}

// Set stores a value in this stream's object store, lazily creating it on
// first use. The store outlives any single token: it is process-local to
// the whole parse and cleared only when the stream itself is closed.
func (c Context) Set(key string, value any) {
	if *c.store == nil {
		*c.store = make(map[string]any)
	}
	(*c.store)[key] = value
}

// Transformer converts a matched lexeme into a semantic value; it is the
// CreateToken half of the post-processor contract (C8's Transform).
type Transformer func(ctx Context, chars []rune) (any, error)

// CharStream is the buffered, cursor-based view over an input source that
// the tokenizer scans. It is not thread-safe: each parse owns exactly one.
type CharStream struct {
	buf          []rune
	startingIdx  int
	currentIdx   int
	bufferedEnd  int
	tracker      *position.Tracker
	tokenStartAt position.Position

	reader    *bufio.Reader
	closer    io.Closer
	leaveOpen bool
	readErr   error
	closed    bool

	store map[string]any
}

// NewFromString returns a CharStream over a static, fully-resident source.
func NewFromString(s string) *CharStream {
	return NewFromRunes([]rune(s))
}

// NewFromRunes returns a CharStream over a static, fully-resident source.
func NewFromRunes(runes []rune) *CharStream {
	cs := &CharStream{
		buf:         runes,
		bufferedEnd: len(runes),
		tracker:     position.NewTracker(),
	}
	cs.tokenStartAt = cs.tracker.Current()
	return cs
}

// NewFromReader returns a CharStream backed by a growable buffer fed
// on-demand from r. Unless leaveOpen is true, closing the stream also
// closes r if it implements io.Closer.
func NewFromReader(r io.Reader, leaveOpen bool) *CharStream {
	cs := &CharStream{
		reader:    bufio.NewReader(r),
		tracker:   position.NewTracker(),
		leaveOpen: leaveOpen,
	}
	if c, ok := r.(io.Closer); ok {
		cs.closer = c
	}
	cs.tokenStartAt = cs.tracker.Current()
	return cs
}

// Err returns the fatal error (if any) raised by the underlying reader.
// Once set, every subsequent stream operation continues to report it.
func (cs *CharStream) Err() error {
	return cs.readErr
}

// TryExpandPastOffset ensures the character at currentIndex+ofs is
// resident, pulling from the reader (growing or compacting the buffer as
// needed) until it is, the reader is exhausted, or the reader errors.
// Returns false iff input ends before that offset; check Err to
// distinguish a clean end-of-input from a reader failure.
func (cs *CharStream) TryExpandPastOffset(ofs int) bool {
	if ofs < 0 {
		panic("stream: negative offset")
	}
	// currentIdx is re-read on every pass: a compaction in pullOne shifts it.
	for cs.currentIdx+ofs >= cs.bufferedEnd {
		if cs.reader == nil {
			return false
		}
		if cs.readErr != nil {
			return false
		}
		if !cs.pullOne() {
			return false
		}
	}
	return true
}

// pullOne reads one more rune from the underlying reader into the buffer,
// compacting discarded characters first if there is room to reclaim.
func (cs *CharStream) pullOne() bool {
	if cs.startingIdx > 0 {
		cs.compact()
	}

	r, _, err := cs.reader.ReadRune()
	if err != nil {
		if err != io.EOF {
			cs.readErr = wrapReaderError(cs.tracker.Current(), err)
		}
		return false
	}

	cs.buf = append(cs.buf, r)
	cs.bufferedEnd++
	return true
}

func wrapReaderError(pos position.Position, cause error) error {
	return ferr.NewUserError(pos, "reading input", cause)
}

// compact discards characters before startingIndex, which may never again
// be referenced since nothing keeps a pin on them.
func (cs *CharStream) compact() {
	if cs.startingIdx == 0 {
		return
	}
	cs.buf = cs.buf[cs.startingIdx:]
	cs.currentIdx -= cs.startingIdx
	cs.bufferedEnd -= cs.startingIdx
	cs.startingIdx = 0
}

// CharacterBuffer returns every resident character from currentIndex
// onward. The returned slice aliases internal storage and is invalidated by
// the next buffer-mutating call (AdvanceBy past a compaction, TryExpandPastOffset).
func (cs *CharStream) CharacterBuffer() []rune {
	return cs.buf[cs.currentIdx:cs.bufferedEnd]
}

// SpanForRange returns the resident characters [startIndex, startIndex+length).
// Both endpoints must already be resident (see TryExpandPastOffset); out of
// range is a contract violation and panics.
func (cs *CharStream) SpanForRange(startIndex, length int) []rune {
	if startIndex < cs.startingIdx || startIndex+length > cs.bufferedEnd {
		panic("stream: span_for_range outside resident buffer")
	}
	return cs.buf[startIndex : startIndex+length]
}

// AdvanceBy moves currentIndex forward by count resident positions,
// updating the position tracker over exactly that span. If unpin is true,
// startingIndex also advances to the new currentIndex, releasing the
// characters before it for the next compaction.
func (cs *CharStream) AdvanceBy(count int, unpin bool) {
	if cs.currentIdx+count > cs.bufferedEnd {
		panic("stream: advance_by past resident buffer")
	}
	span := cs.buf[cs.currentIdx : cs.currentIdx+count]
	cs.tracker.Advance(span)
	cs.currentIdx += count
	if unpin {
		cs.startingIdx = cs.currentIdx
	}
}

// GetPositionAtOffset peeks the Position ofs characters ahead of
// currentIndex without mutating the tracker. The offset must already be
// resident.
func (cs *CharStream) GetPositionAtOffset(ofs int) position.Position {
	span := cs.buf[cs.currentIdx : cs.currentIdx+ofs]
	return cs.tracker.PeekAdvance(span)
}

// CreateToken invokes transform over the characters consumed since the last
// CreateToken (span_for_range(startingIndex, currentIndex-startingIndex)),
// then unpins: startingIndex becomes currentIndex and the stream remembers
// the new token-start Position. Must be called at most once per token.
func (cs *CharStream) CreateToken(transform Transformer) (any, error) {
	span := cs.buf[cs.startingIdx:cs.currentIdx]
	ctx := Context{
		Start: cs.tokenStartAt,
		End:   cs.tracker.Current(),
		store: &cs.store,
	}

	val, err := transform(ctx, span)

	cs.startingIdx = cs.currentIdx
	cs.tokenStartAt = cs.tracker.Current()

	return val, err
}

// TokenStartPosition is the Position recorded at the last CreateToken call
// (or stream construction, before the first token).
func (cs *CharStream) TokenStartPosition() position.Position {
	return cs.tokenStartAt
}

// CurrentPosition is the tracker's current Position, at currentIndex.
func (cs *CharStream) CurrentPosition() position.Position {
	return cs.tracker.Current()
}

// Close releases the stream's buffer and, unless the stream was constructed
// with leaveOpen, closes the underlying reader. Safe to call more than
// once; every call after the first is a no-op.
func (cs *CharStream) Close() error {
	if cs.closed {
		return nil
	}
	cs.closed = true
	cs.buf = nil
	cs.store = nil

	if cs.leaveOpen || cs.closer == nil {
		return nil
	}
	return cs.closer.Close()
}
