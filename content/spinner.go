package content

import (
	"fmt"
	"os"
	"time"
)

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// startSpinner prints a console spinner until the returned stop function is
// called. Purely cosmetic feedback for the blocking generation call.
func startSpinner(label string) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		fmt.Fprintf(os.Stdout, "%s... ", label)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-done:
				fmt.Fprintln(os.Stdout, "done")
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stdout, "%c\b", spinnerFrames[i%len(spinnerFrames)])
				i++
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
