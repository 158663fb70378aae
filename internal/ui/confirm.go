package ui

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const SquashQuestion = "Do you want to squash these commits? (y/n): "

// Prompter asks a single yes/no question per call. Only a case-insensitive
// "y" counts as consent; anything else, including end of input, declines.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

func NewPrompter(input io.Reader, output io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(input), writer: output}
}

func (p *Prompter) Confirm(question string) (bool, error) {
	if p.writer != nil {
		if _, err := io.WriteString(p.writer, question); err != nil {
			return false, err
		}
	}

	answer, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}
