package scanner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns the next instant on every call.
func steppingClock(start time.Time, steps ...time.Duration) func() time.Time {
	i := 0
	at := start
	return func() time.Time {
		if i < len(steps) {
			at = at.Add(steps[i])
			i++
		}
		return at
	}
}

func TestRun_DeliversTrimmedNonBlankLines(t *testing.T) {
	src := New(strings.NewReader(" a \n\n\t\nb\r\n"), 0, logging.Discard())

	var got []string
	err := src.Run(context.Background(), func(code string) { got = append(got, code) })
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRun_CooldownDropsLines(t *testing.T) {
	src := New(strings.NewReader("first\nsecond\nthird\nfourth\n"), 2*time.Second, logging.Discard())
	// first at 0s, second at 1s (dropped), third at 2s, fourth at 3.5s (dropped)
	src.now = steppingClock(time.Unix(0, 0), 0, time.Second, time.Second, 1500*time.Millisecond)

	var got []string
	require.NoError(t, src.Run(context.Background(), func(code string) { got = append(got, code) }))
	assert.Equal(t, []string{"first", "third"}, got)
}

func TestRun_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	src := New(pr, 0, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	delivered := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, func(code string) { delivered <- code }) }()

	_, err := pw.Write([]byte("code-1\n"))
	require.NoError(t, err)
	assert.Equal(t, "code-1", <-delivered)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o600))

	src, err := Open(path, DefaultCooldown, logging.Discard())
	require.NoError(t, err)

	var got []string
	require.NoError(t, src.Run(context.Background(), func(code string) { got = append(got, code) }))
	assert.Equal(t, []string{"x"}, got)

	_, err = Open(path+".missing", DefaultCooldown, logging.Discard())
	require.Error(t, err)
}
