package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetKey prompts on w and reads the database key from the terminal without
// echo. A newline is printed after the read to keep the UI tidy.
func GetKey(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter database key: "); err != nil {
		return "", err
	}
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	return key, nil
}
