// Package chunker splits replies into transport-sized chunks and emits
// them in order with a pacing delay, since the mesh transport offers no
// delivery acknowledgment to sequence on.
package chunker

import "unicode/utf8"

// MaxChunkBytes is the hard ceiling per chunk, conservatively below the
// radio's practical frame limit.
const MaxChunkBytes = 200

// DefaultChunkBytes leaves headroom under MaxChunkBytes.
const DefaultChunkBytes = 190

// Split cuts text into chunks of at most limit UTF-8 bytes, preferring
// to break just after a newline, then just after a space, and only then
// mid-line at a rune boundary. Concatenating the chunks in order yields
// the input exactly.
func Split(text string, limit int) []string {
	if limit < 1 || limit > MaxChunkBytes {
		limit = MaxChunkBytes
	}
	if text == "" {
		return nil
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= limit {
			chunks = append(chunks, text)
			break
		}
		window := runeWindow(text, limit)
		cut := splitIndex(window)
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return chunks
}

// runeWindow returns the longest prefix of text that fits in limit
// bytes without cutting a rune in half. At least one rune is always
// taken so progress is guaranteed.
func runeWindow(text string, limit int) string {
	end := 0
	for end < len(text) {
		_, size := utf8.DecodeRuneInString(text[end:])
		if end+size > limit && end > 0 {
			break
		}
		end += size
		if end >= limit {
			break
		}
	}
	return text[:end]
}

// splitIndex picks where to cut the window: after the last newline if
// there is one, else after the last space or tab, else at the window
// end.
func splitIndex(window string) int {
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == ' ' || window[i] == '\t' {
			return i + 1
		}
	}
	return len(window)
}
