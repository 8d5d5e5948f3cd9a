package filter

import "strings"

// SplitTags parses a comma-separated tag list: tokens are trimmed, empty
// tokens dropped and duplicates removed, keeping first-seen order.
func SplitTags(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		t := strings.TrimSpace(part)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// TagBuffer is the tag entry field. Text accumulates until a comma is typed
// or the entry is committed; each completed token is handed back to the
// caller, which adds it to the tag set.
type TagBuffer struct {
	text string
}

// String returns the pending, uncommitted text.
func (b *TagBuffer) String() string { return b.text }

// Type appends s to the buffer. Every token terminated by a comma is
// returned (trimmed, empties dropped); text after the last comma stays
// pending.
func (b *TagBuffer) Type(s string) []string {
	b.text += s
	i := strings.LastIndex(b.text, ",")
	if i < 0 {
		return nil
	}
	done := b.text[:i]
	b.text = strings.TrimLeft(b.text[i+1:], " \t")
	var tokens []string
	for _, part := range strings.Split(done, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Commit ends the pending entry (the "commit" key). It returns the trimmed
// token, or "" if the buffer held only whitespace. The buffer is emptied
// only when a token was produced.
func (b *TagBuffer) Commit() string {
	t := strings.TrimSpace(b.text)
	if t != "" {
		b.text = ""
	}
	return t
}

// Delete handles the delete key. On an empty buffer it returns true, which
// means the last tag of the set should be removed. Otherwise it drops the
// last character of the pending text and returns false.
func (b *TagBuffer) Delete() bool {
	if b.text == "" {
		return true
	}
	r := []rune(b.text)
	b.text = string(r[:len(r)-1])
	return false
}

// Reset empties the buffer.
func (b *TagBuffer) Reset() { b.text = "" }
