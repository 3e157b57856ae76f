// Package stream assembles chunked text responses from the chat endpoint.
package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrEmptyStream reports a stream that completed with no visible content.
var ErrEmptyStream = errors.New("stream completed with empty reply")

const readBufferSize = 4 * 1024

// Consume reads r to completion, invoking onChunk with the cumulative text
// after every decoded chunk. The callback always receives the whole message so
// far, never a delta, so a renderer can re-render idempotently. Multi-byte
// characters split across chunk boundaries are held back until the remaining
// bytes arrive. Returns the full text, or ErrEmptyStream when the reader
// finishes with only whitespace. Cancelling ctx aborts between reads.
func Consume(ctx context.Context, r io.Reader, onChunk func(textSoFar string)) (string, error) {
	var (
		full    strings.Builder
		pending []byte // trailing bytes of an incomplete rune
		buf     = make([]byte, readBufferSize)
	)

	for {
		if err := ctx.Err(); err != nil {
			return full.String(), err
		}

		n, err := r.Read(buf)
		if n > 0 {
			chunk := append(pending, buf[:n]...)
			complete, rest := splitCompleteRunes(chunk)
			pending = rest

			if len(complete) > 0 {
				full.Write(complete)
				if onChunk != nil {
					onChunk(full.String())
				}
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return full.String(), err
		}
	}

	// A trailing partial rune at EOF is a truncated stream; emit it as-is so
	// nothing is silently dropped.
	if len(pending) > 0 {
		full.Write(pending)
		if onChunk != nil {
			onChunk(full.String())
		}
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyStream
	}
	return text, nil
}

// splitCompleteRunes divides b into a prefix of whole UTF-8 sequences and a
// suffix holding the leading bytes of a rune whose tail has not arrived yet.
func splitCompleteRunes(b []byte) (complete, rest []byte) {
	// A rune is at most utf8.UTFMax bytes, so only the last few bytes can
	// belong to an unfinished sequence.
	for i := len(b) - 1; i >= 0 && len(b)-i < utf8.UTFMax; i-- {
		c := b[i]
		if c < 0x80 {
			break // ASCII, everything up to here is complete
		}
		if c >= 0xC0 {
			if !utf8.FullRune(b[i:]) {
				return b[:i], b[i:]
			}
			break
		}
		// continuation byte, keep scanning backwards for the start byte
	}
	return b, nil
}
