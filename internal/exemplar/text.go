package exemplar

import (
	"bufio"
	"io"
	"strings"
)

// TextReader handles plain text. Blank lines separate paragraphs; line
// breaks inside a paragraph are kept.
type TextReader struct{}

func (TextReader) Read(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	return joinParagraphs(paragraphs), nil
}
