// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stream consumes token streams produced by text generators.
//
// Unstructured stages accumulate fragments with Collect. Structured stages
// feed fragments to a Structured consumer, which re-parses the whole buffer
// after every fragment with ParsePartial and keeps the last snapshot that
// both parses and validates.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/pdiddy/deep-research/pkg/types"
)

// ErrEmpty is returned by Collect when the stream ends without any
// non-whitespace text.
var ErrEmpty = errors.New("empty response")

// Collect drains seq into a single string. It stops at the first stream
// error or when ctx is done.
func Collect(ctx context.Context, seq iter.Seq2[string, error]) (string, error) {
	var b strings.Builder
	for frag, err := range seq {
		if err != nil {
			return b.String(), err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return b.String(), ctxErr
		}
		b.WriteString(frag)
	}
	if err := ctx.Err(); err != nil {
		return b.String(), err
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmpty
	}
	return b.String(), nil
}

// State is the lifecycle of a Structured consumer.
type State int

const (
	// Accumulating: no snapshot has validated yet.
	Accumulating State = iota
	// Validated: at least one snapshot has validated.
	Validated
	// Exhausted: the stream has ended; the last snapshot, if any, is final.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case Validated:
		return "validated"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Validator checks a decoded snapshot.
type Validator[T any] func(T) error

// Structured accumulates fragments of a JSON document of type T.
type Structured[T any] struct {
	buf      strings.Builder
	validate Validator[T]
	state    State
	value    T
	has      bool
	parse    ParseState
	accepts  int
}

// NewStructured returns a consumer that accepts snapshots passing validate.
// A nil validate accepts every snapshot that decodes.
func NewStructured[T any](validate Validator[T]) *Structured[T] {
	return &Structured[T]{validate: validate, parse: ParseUndefined}
}

// Feed appends fragment and re-parses the buffer. It returns the new
// snapshot and true when this fragment produced an accepted value.
// Feeding an exhausted consumer is a no-op.
func (s *Structured[T]) Feed(fragment string) (T, bool) {
	var zero T
	if s.state == Exhausted {
		return zero, false
	}
	s.buf.WriteString(fragment)

	raw, ps := ParsePartial(StripFences(s.buf.String()))
	s.parse = ps
	if !ps.Accepted() {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false
	}
	if s.validate != nil && s.validate(v) != nil {
		return zero, false
	}
	s.value = v
	s.has = true
	s.accepts++
	s.state = Validated
	return v, true
}

// Close marks the stream as ended and returns the final snapshot.
func (s *Structured[T]) Close() (T, bool) {
	s.state = Exhausted
	return s.value, s.has
}

// State returns the consumer state.
func (s *Structured[T]) State() State { return s.state }

// LastParse returns the parse state of the most recent Feed.
func (s *Structured[T]) LastParse() ParseState { return s.parse }

// Accepts returns how many fragments produced an accepted snapshot.
func (s *Structured[T]) Accepts() int { return s.accepts }

// Text returns the raw accumulated buffer.
func (s *Structured[T]) Text() string { return s.buf.String() }

// Value returns the last accepted snapshot.
func (s *Structured[T]) Value() (T, bool) { return s.value, s.has }

// Consume drives seq through a Structured consumer. It returns the last
// accepted snapshot and ok=false when none validated before the stream
// ended. A stream error or context expiry is returned as err; the caller
// decides whether that is fatal. The onSnapshot callback, if non-nil, sees
// every accepted snapshot in order.
func Consume[T any](ctx context.Context, seq iter.Seq2[string, error], validate Validator[T], onSnapshot func(T)) (value T, ok bool, err error) {
	c := NewStructured(validate)
	for frag, ferr := range seq {
		if ferr != nil {
			v, has := c.Close()
			return v, has, ferr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			v, has := c.Close()
			return v, has, ctxErr
		}
		if v, accepted := c.Feed(frag); accepted && onSnapshot != nil {
			onSnapshot(v)
		}
	}
	value, ok = c.Close()
	return value, ok, ctx.Err()
}

// ValidateTasks accepts a non-empty list whose every element carries both
// a query and a research goal.
func ValidateTasks(tasks []types.SearchTask) error {
	if len(tasks) == 0 {
		return errors.New("no search tasks")
	}
	for i, t := range tasks {
		if !t.Valid() {
			return fmt.Errorf("task %d: query and researchGoal are required", i)
		}
	}
	return nil
}

// ConsumeTasks is Consume specialised to search task lists.
func ConsumeTasks(ctx context.Context, seq iter.Seq2[string, error]) ([]types.SearchTask, bool, error) {
	return Consume(ctx, seq, ValidateTasks, nil)
}

// StripFences removes Markdown code-fence decoration around a JSON body:
// a leading "```json", "json", or "```" and a trailing "```".
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "json"):
		text = text[len("json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
