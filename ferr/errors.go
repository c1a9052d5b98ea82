// Package ferr defines the closed set of diagnostic errors this engine can
// raise. Every error is fatal to the parse or build in progress: there is no
// partial-success semantics and nothing is retried (see the design's §7
// error-handling notes).
//
// Two concrete error types are exported: ParseError for failures discovered
// while running a compiled grammar over input, and BuildError for failures
// discovered while compiling a grammar. Both follow the shape of tqerrors in
// the reference stack: an unexported struct, exported constructors, an
// Error() string, and an Unwrap() so callers can reach a wrapped cause with
// errors.As/errors.Is instead of type-switching on an open interface.
package ferr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brackwater/weir/position"
)

// Kind is the closed enumeration of ways a parse can fail.
type Kind int

const (
	// KindUnexpectedEndOfInput means the input ended where more characters
	// were required to complete a token.
	KindUnexpectedEndOfInput Kind = iota

	// KindLexicalError means the DFA had no accepting state and no
	// transition for the current character, outside of any group or inside
	// a token-mode group.
	KindLexicalError

	// KindSyntaxError means the LALR driver had no action for (state,
	// terminal).
	KindSyntaxError

	// KindUnexpectedGroupEnd means a group-end literal was seen while not
	// inside the group it would close.
	KindUnexpectedGroupEnd

	// KindUnexpectedEndOfInputInGroup means the input ended while still
	// inside a group that is not ended-by-newline.
	KindUnexpectedEndOfInputInGroup

	// KindUserError means the post-processor raised a
	// ParserApplicationException (surfaced to the caller as this kind). A
	// failure of the underlying input reader is also reported with this
	// kind, wrapping the reader's error.
	KindUserError
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedEndOfInput:
		return "unexpected end of input"
	case KindLexicalError:
		return "lexical error"
	case KindSyntaxError:
		return "syntax error"
	case KindUnexpectedGroupEnd:
		return "unexpected group end"
	case KindUnexpectedEndOfInputInGroup:
		return "unexpected end of input in group"
	case KindUserError:
		return "user error"
	default:
		return "unknown parse error"
	}
}

// ExpectedSymbol is a terminal name or the end-of-input sentinel, used in
// SyntaxError's Expected/Actual sets so callers don't need to special-case
// EOF against the grammar's terminal type.
type ExpectedSymbol struct {
	Name  string
	IsEOF bool
}

func (e ExpectedSymbol) String() string {
	if e.IsEOF {
		return "end of input"
	}
	return e.Name
}

// ParseError is raised by the tokenizer or the LALR driver. It always
// carries the Position at which the failure was detected.
type parseError struct {
	pos      position.Position
	kind     Kind
	message  string
	char     rune
	literal  string
	expected []ExpectedSymbol
	actual   ExpectedSymbol
	wrap     error
}

// ParseError is the exported handle returned to callers; use errors.As to
// recover it from a wrapped error chain.
type ParseError struct {
	*parseError
}

func (e ParseError) Error() string {
	return e.message
}

// Unwrap exposes a wrapped cause, e.g. a reader I/O error that surfaced as a
// fatal parse error.
func (e ParseError) Unwrap() error {
	return e.wrap
}

// Position is where the error was detected.
func (e ParseError) Position() position.Position { return e.pos }

// Kind is the closed category of the error.
func (e ParseError) Kind() Kind { return e.kind }

// Char is set only for KindLexicalError.
func (e ParseError) Char() rune { return e.char }

// Literal is set for KindUnexpectedGroupEnd (the group-end literal) and
// KindUnexpectedEndOfInputInGroup (the group's name).
func (e ParseError) Literal() string { return e.literal }

// Expected is set only for KindSyntaxError: the set of terminals (and
// possibly EOF) that had a defined action in the state where the error was
// raised.
func (e ParseError) Expected() []ExpectedSymbol { return e.expected }

// Actual is set only for KindSyntaxError: the terminal or EOF actually
// found.
func (e ParseError) Actual() ExpectedSymbol { return e.actual }

// NewUnexpectedEndOfInput reports that input ended mid-token.
func NewUnexpectedEndOfInput(pos position.Position) ParseError {
	return ParseError{&parseError{
		pos:     pos,
		kind:    KindUnexpectedEndOfInput,
		message: fmt.Sprintf("%s: unexpected end of input", pos),
	}}
}

// NewLexicalError reports a character the DFA could not accept or
// transition on, outside of any group or inside a token-mode group.
func NewLexicalError(pos position.Position, ch rune) ParseError {
	return ParseError{&parseError{
		pos:     pos,
		kind:    KindLexicalError,
		char:    ch,
		message: fmt.Sprintf("%s: unrecognized character %q", pos, ch),
	}}
}

// NewSyntaxError reports that the LALR driver had no action for the given
// state on the actual symbol found; expected lists every symbol that did
// have one.
func NewSyntaxError(pos position.Position, expected []ExpectedSymbol, actual ExpectedSymbol) ParseError {
	return ParseError{&parseError{
		pos:      pos,
		kind:     KindSyntaxError,
		expected: expected,
		actual:   actual,
		message:  fmt.Sprintf("%s: unexpected %s; %s", pos, actual, expectedPhrase(expected)),
	}}
}

// NewUnexpectedGroupEnd reports a group-end literal seen while not inside
// that group.
func NewUnexpectedGroupEnd(pos position.Position, literal string) ParseError {
	return ParseError{&parseError{
		pos:     pos,
		kind:    KindUnexpectedGroupEnd,
		literal: literal,
		message: fmt.Sprintf("%s: unexpected group end %q", pos, literal),
	}}
}

// NewUnexpectedEndOfInputInGroup reports that input ended while still inside
// a group that does not end at newline.
func NewUnexpectedEndOfInputInGroup(pos position.Position, groupName string) ParseError {
	return ParseError{&parseError{
		pos:     pos,
		kind:    KindUnexpectedEndOfInputInGroup,
		literal: groupName,
		message: fmt.Sprintf("%s: unexpected end of input inside group %q", pos, groupName),
	}}
}

// NewUserError wraps a post-processor-raised ParserApplicationException as a
// UserError at the given position.
func NewUserError(pos position.Position, message string, cause error) ParseError {
	return ParseError{&parseError{
		pos:     pos,
		kind:    KindUserError,
		message: fmt.Sprintf("%s: %s", pos, message),
		wrap:    cause,
	}}
}

// PostProcessorError wraps a non-ParserApplicationException error returned
// by a post-processor's Fuse or Transform. It is re-raised to the
// caller rather than folded into a ParseError, since it represents a bug in
// caller-supplied code rather than a malformed input.
type PostProcessorError struct {
	cause error
}

// NewPostProcessorError wraps cause as a PostProcessorError.
func NewPostProcessorError(cause error) PostProcessorError {
	return PostProcessorError{cause: cause}
}

func (e PostProcessorError) Error() string {
	return fmt.Sprintf("post-processor error: %s", e.cause)
}

func (e PostProcessorError) Unwrap() error { return e.cause }

// ParserApplicationException is the sentinel error type a post-processor
// should return (optionally via errors.As-compatible wrapping) to have its
// failure surfaced as a UserError at a caller-chosen Position rather than a
// PostProcessorError.
type ParserApplicationException struct {
	Message string
	At      *position.Position
}

func (e *ParserApplicationException) Error() string { return e.Message }

// Diagnostic is one entry in a BuildError's list: a conflict or contract
// violation found while compiling a grammar.
type Diagnostic struct {
	Message string
	At      *position.Position
}

func (d Diagnostic) String() string {
	if d.At != nil {
		return fmt.Sprintf("%s: %s", *d.At, d.Message)
	}
	return d.Message
}

// BuildError is the aggregate error returned (or attached to a rejected
// Grammar) when grammar compilation fails. A parser built from a failed
// build rejects every call with this same BuildError.
type BuildError struct {
	Diagnostics []Diagnostic
}

func (e *BuildError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "grammar build failed"
	}
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = d.String()
	}
	return "grammar build failed:\n  " + strings.Join(parts, "\n  ")
}

// NewBuildError collects diags into a BuildError. Returns nil if diags is
// empty, so callers can write `if err := ferr.NewBuildError(diags); err !=
// nil { ... }` without a separate length check.
func NewBuildError(diags []Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	return &BuildError{Diagnostics: diags}
}

func expectedPhrase(expected []ExpectedSymbol) string {
	if len(expected) == 0 {
		return "no input was expected here"
	}

	names := make([]string, len(expected))
	for i, e := range expected {
		names[i] = e.String()
	}

	var sb strings.Builder
	sb.WriteString("expected ")
	for i, n := range names {
		if i > 0 {
			if len(names) > 2 {
				sb.WriteString(", ")
			} else {
				sb.WriteString(" ")
			}
			if i == len(names)-1 {
				sb.WriteString("or ")
			}
		}
		sb.WriteString(n)
	}
	return sb.String()
}

// Is enables errors.Is(err, ferr.ErrFatal) style checks for "this is some
// kind of fatal engine error" without caring about the specific Kind.
var ErrFatal = errors.New("fatal parse error")

func (e ParseError) Is(target error) bool {
	return target == ErrFatal
}
