package voice

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineRecognizer replays dictation from text, one line per segment. It
// stands in for a microphone in vaultctl and in tests.
//
// A blank line is a segment with no speech. A line "!<code>" reports that
// provider error code. End of input is reported as an aborted recognition.
type LineRecognizer struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{scanner: bufio.NewScanner(r)}
}

func (l *LineRecognizer) Listen(ctx context.Context, emit func(Result)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	ok := l.scanner.Scan()
	line := strings.TrimSpace(l.scanner.Text())
	l.mu.Unlock()

	if !ok {
		return &RecognitionError{Code: CodeAborted}
	}
	if line == "" {
		return &RecognitionError{Code: CodeNoSpeech}
	}
	if code, isErr := strings.CutPrefix(line, "!"); isErr {
		return &RecognitionError{Code: code}
	}

	// Interim words first, then the final line, like a live recognizer.
	words := strings.Fields(line)
	for i := 1; i < len(words); i++ {
		emit(Result{Transcript: strings.Join(words[:i], " ")})
	}
	emit(Result{Transcript: strings.Join(words, " "), Final: true})
	return nil
}
