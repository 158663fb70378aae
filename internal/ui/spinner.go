package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

type Spinner struct {
	out     io.Writer
	message string
	cancel  context.CancelFunc
	done    chan struct{}
}

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// NewSpinner animates message on out until Stop is called.
func NewSpinner(out io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(context.Background())
	sp := &Spinner{
		out:     out,
		message: message,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go sp.run(ctx)
	return sp
}

func (s *Spinner) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
			char := spinnerChars[i%len(spinnerChars)]
			fmt.Fprintf(s.out, "\r%s %s", color.CyanString(char), s.message)
			i++
		}
	}
}

func (s *Spinner) Stop() {
	s.cancel()
	<-s.done
}

func ShowSpinner(out io.Writer, message string, fn func() error) error {
	sp := NewSpinner(out, message)
	defer sp.Stop()
	return fn()
}
