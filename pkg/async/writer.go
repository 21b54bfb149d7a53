// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package async

import (
	"bytes"
	"strings"
	"sync"
)

// LineWriter is an io.Writer that reports each complete line written to it as progress. It lets the output of a
// long running tool (docker build, docker push) be drained by a background observer instead of the caller.
type LineWriter struct {
	mu       sync.Mutex
	progress *Progress[string]
	buf      bytes.Buffer
}

func NewLineWriter(progress *Progress[string]) *LineWriter {
	return &LineWriter{progress: progress}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line, keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}

		if trimmed := trimLine(line); trimmed != "" {
			w.progress.SetProgress(trimmed)
		}
	}

	return len(p), nil
}

// Flush reports any trailing partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if trimmed := trimLine(w.buf.String()); trimmed != "" {
		w.progress.SetProgress(trimmed)
	}
	w.buf.Reset()
}

func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}
