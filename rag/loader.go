// Package rag resolves per-tenant retrieval context from plain-text
// knowledge files.
package rag

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadDocuments reads one document per non-empty line, trimmed.
func LoadDocuments(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge file: %w", err)
	}
	defer f.Close()

	var docs []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			docs = append(docs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	return docs, nil
}
