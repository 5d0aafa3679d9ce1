// Package scanner reads codes from a line-oriented hardware scanner: a USB
// HID or serial scanner exposed as a device file or pipe, one code per line.
package scanner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/logging"
)

// DefaultCooldown is how long the source stays paused after a delivery.
const DefaultCooldown = 2 * time.Second

type Source struct {
	r        io.Reader
	cooldown time.Duration
	log      logging.Logger
	now      func() time.Time
}

func New(r io.Reader, cooldown time.Duration, log logging.Logger) *Source {
	return &Source{r: r, cooldown: cooldown, log: log, now: time.Now}
}

// Open reads from the device or pipe at path.
func Open(path string, cooldown time.Duration, log logging.Logger) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return New(f, cooldown, log), nil
}

// Run delivers each non-blank line, trimmed, to deliver. Lines read while
// paused are dropped. Run returns nil at end of input, or ctx.Err() after
// cancellation; a closable reader is closed on return.
func (s *Source) Run(ctx context.Context, deliver func(code string)) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		sc := bufio.NewScanner(s.r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		readErr <- sc.Err()
	}()

	defer func() {
		if c, ok := s.r.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	var pausedUntil time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			if err != nil && !errors.Is(err, os.ErrClosed) && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil

		case line := <-lines:
			code := strings.TrimSpace(line)
			if code == "" {
				continue
			}
			now := s.now()
			if now.Before(pausedUntil) {
				s.log.Debug(ctx, "scan dropped during cooldown")
				continue
			}
			pausedUntil = now.Add(s.cooldown)
			deliver(code)
		}
	}
}
