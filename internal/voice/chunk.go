package voice

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Per-request input caps, in characters.
const (
	OpenAIMaxInput     = 4096
	ElevenLabsMaxInput = 5000
)

// splitText breaks text into pieces of at most limit runes. It prefers to cut
// after a sentence end, then at whitespace, and only cuts inside a word when a
// window has no whitespace at all.
func splitText(text string, limit int) []string {
	rest := trimRunes([]rune(text))
	var chunks []string
	for len(rest) > limit {
		cut := breakPoint(rest[:limit])
		if chunk := strings.TrimSpace(string(rest[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		rest = trimRunes(rest[cut:])
	}
	if len(rest) > 0 {
		chunks = append(chunks, string(rest))
	}
	return chunks
}

func breakPoint(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) && strings.ContainsRune(".!?;:", window[i-1]) {
			return i
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return len(window)
}

func trimRunes(r []rune) []rune {
	for len(r) > 0 && unicode.IsSpace(r[0]) {
		r = r[1:]
	}
	for len(r) > 0 && unicode.IsSpace(r[len(r)-1]) {
		r = r[:len(r)-1]
	}
	return r
}

// synthesizeChunks runs synth over each piece of text in order and joins the
// MP3 streams. MP3 frames are self-contained, so the result plays as one clip.
func synthesizeChunks(ctx context.Context, text string, limit int, synth func(context.Context, string) ([]byte, error)) ([]byte, error) {
	chunks := splitText(text, limit)
	var audio []byte
	for i, chunk := range chunks {
		part, err := synth(ctx, chunk)
		if err != nil {
			if len(chunks) > 1 {
				return nil, fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
			}
			return nil, err
		}
		audio = append(audio, part...)
	}
	return audio, nil
}
