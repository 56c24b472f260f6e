// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stream

import (
	"encoding/json"
	"strings"
)

// ParseState reports how ParsePartial arrived at its value.
type ParseState string

const (
	// ParseUndefined means there was no input to parse.
	ParseUndefined ParseState = "undefined-input"
	// ParseSuccessful means the input was already valid JSON.
	ParseSuccessful ParseState = "successful-parse"
	// ParseRepaired means the input was a truncated or trailing-garbage
	// prefix of JSON and was closed off into a valid document.
	ParseRepaired ParseState = "repaired-parse"
	// ParseFailed means no valid document could be recovered.
	ParseFailed ParseState = "failed-parse"
)

// Accepted reports whether the state carries a usable value.
func (s ParseState) Accepted() bool {
	return s == ParseSuccessful || s == ParseRepaired
}

// ParsePartial parses text as JSON, tolerating an incomplete tail. The
// returned document is always valid JSON when the state is accepted.
//
// Repair keeps everything up to the last point where the document was
// structurally complete, then appends the closers for any open arrays or
// objects. A string value cut off mid-way is closed in place; a truncated
// true/false/null is completed; a dangling key, colon, or comma is dropped.
// Text after a complete top-level value is discarded.
func ParsePartial(text string) (json.RawMessage, ParseState) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ParseUndefined
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), ParseSuccessful
	}
	repaired, ok := repair(text)
	if !ok || !json.Valid([]byte(repaired)) {
		return nil, ParseFailed
	}
	return json.RawMessage(repaired), ParseRepaired
}

// frame is one open container on the repair stack.
type frame struct {
	closer    byte
	expectKey bool // objects only: the next string is a key
}

type repairer struct {
	s     string
	stack []frame

	// checkpoint is the longest prefix known to be closable, and
	// checkpointClosers the suffix that closes it. -1 means none yet.
	checkpoint        int
	checkpointClosers string
}

func repair(s string) (string, bool) {
	r := &repairer{s: s, checkpoint: -1}
	return r.run()
}

func (r *repairer) closers() string {
	var b strings.Builder
	for i := len(r.stack) - 1; i >= 0; i-- {
		b.WriteByte(r.stack[i].closer)
	}
	return b.String()
}

func (r *repairer) mark(pos int) {
	r.checkpoint = pos
	r.checkpointClosers = r.closers()
}

func (r *repairer) fromCheckpoint() (string, bool) {
	if r.checkpoint < 0 {
		return "", false
	}
	return r.s[:r.checkpoint] + r.checkpointClosers, true
}

func (r *repairer) top() *frame {
	if len(r.stack) == 0 {
		return nil
	}
	return &r.stack[len(r.stack)-1]
}

// inKeyPosition reports whether a string starting now would be an object key.
func (r *repairer) inKeyPosition() bool {
	f := r.top()
	return f != nil && f.closer == '}' && f.expectKey
}

// valueDone records that a complete value ends at pos. The second result is
// true when that value closed the top-level document.
func (r *repairer) valueDone(pos int) (string, bool) {
	if len(r.stack) == 0 {
		return r.s[:pos], true
	}
	r.mark(pos)
	return "", false
}

func (r *repairer) run() (string, bool) {
	s := r.s
	n := len(s)
	i := 0
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '{' || c == '[':
			closer := byte('}')
			if c == '[' {
				closer = ']'
			}
			r.stack = append(r.stack, frame{closer: closer, expectKey: c == '{'})
			i++
			r.mark(i)

		case c == '}' || c == ']':
			f := r.top()
			if f == nil || f.closer != c {
				return "", false
			}
			r.stack = r.stack[:len(r.stack)-1]
			i++
			if out, done := r.valueDone(i); done {
				return out, true
			}

		case c == ',':
			if f := r.top(); f != nil && f.closer == '}' {
				f.expectKey = true
			}
			i++

		case c == ':':
			if f := r.top(); f != nil && f.closer == '}' {
				f.expectKey = false
			}
			i++

		case c == '"':
			isKey := r.inKeyPosition()
			end, closed := scanString(s, i)
			if !closed {
				if isKey {
					return r.fromCheckpoint()
				}
				return trimEscape(s[:end]) + `"` + r.closers(), true
			}
			i = end
			if isKey {
				r.top().expectKey = false
				continue
			}
			if out, done := r.valueDone(i); done {
				return out, true
			}

		case c == '-' || (c >= '0' && c <= '9'):
			end := scanNumber(s, i)
			if end == n {
				num := strings.TrimRight(s[i:end], ".eE+-")
				if num == "" {
					return r.fromCheckpoint()
				}
				return s[:i] + num + r.closers(), true
			}
			i = end
			if out, done := r.valueDone(i); done {
				return out, true
			}

		case c == 't' || c == 'f' || c == 'n':
			lit := literalFor(c)
			rest := s[i:]
			if len(rest) < len(lit) {
				if !strings.HasPrefix(lit, rest) {
					return "", false
				}
				return s[:i] + lit + r.closers(), true
			}
			if !strings.HasPrefix(rest, lit) {
				return "", false
			}
			i += len(lit)
			if out, done := r.valueDone(i); done {
				return out, true
			}

		default:
			return "", false
		}
	}
	return r.fromCheckpoint()
}

// scanString returns the index just past the closing quote of the string
// starting at s[start], or len(s) and false when the string is unterminated.
func scanString(s string, start int) (int, bool) {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1, true
		}
	}
	return len(s), false
}

func scanNumber(s string, start int) int {
	i := start
	for i < len(s) {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			i++
			continue
		}
		break
	}
	return i
}

// trimEscape drops an escape sequence cut off at the end of a string body.
func trimEscape(s string) string {
	// An odd run of trailing backslashes leaves an unfinished escape.
	bs := 0
	for j := len(s) - 1; j >= 0 && s[j] == '\\'; j-- {
		bs++
	}
	if bs%2 == 1 {
		return s[:len(s)-1]
	}
	// A truncated \uXXXX.
	if k := strings.LastIndex(s, `\u`); k >= 0 && len(s)-k < 6 {
		pre := 0
		for j := k - 1; j >= 0 && s[j] == '\\'; j-- {
			pre++
		}
		if pre%2 == 0 {
			return s[:k]
		}
	}
	return s
}

func literalFor(c byte) string {
	switch c {
	case 't':
		return "true"
	case 'f':
		return "false"
	}
	return "null"
}
