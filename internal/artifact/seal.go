package artifact

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/cryptox"
)

// nowFn is a test seam for the container timestamp.
var nowFn = time.Now

// encryptFn is a test seam for the cipher.
var encryptFn = cryptox.Encrypt

// SealOptions configures Seal.
type SealOptions struct {
	// Key is the pre-shared passphrase.
	Key string
	// Salt is prepended to every code before encryption. It may be empty.
	Salt string
}

// Seal encrypts every code as Salt+code and wraps the ciphertexts in a
// container together with a key check.
func Seal(codes []string, opts SealOptions) (*Container, error) {
	if opts.Key == "" {
		return nil, fmt.Errorf("%w: empty key", common.ErrorValidation)
	}

	records := make([]string, 0, len(codes))
	for i, code := range codes {
		ct, err := encryptFn(opts.Salt+code, opts.Key)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, ct)
	}

	salt := common.GenerateRandByteArray(16)
	return &Container{
		Encrypted:    true,
		Version:      FormatVersion,
		Cipher:       CipherName,
		KeyCheck:     cryptox.DeriveKeyCheck([]byte(opts.Key), salt),
		KeyCheckSalt: salt,
		CreatedAt:    nowFn().UTC(),
		Records:      records,
	}, nil
}

// ReadLines returns the trimmed, non-empty lines of r. Both LF and CRLF line
// endings are accepted.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
