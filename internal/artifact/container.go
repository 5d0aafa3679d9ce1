// Package artifact defines the encrypted database container exchanged between
// the sealer, the artifact server and the checker.
//
// On the wire the container is JSON:
//
//	{
//	  "encrypted": true,
//	  "version": 1,
//	  "cipher": "aes-256-cbc/evp-md5",
//	  "key_check": "<base64>",
//	  "key_check_salt": "<base64>",
//	  "created_at": "2025-01-01T00:00:00Z",
//	  "records": ["U2FsdGVkX1...", "..."]
//	}
//
// "encrypted" must be true and "records" must be present; anything else is
// not a container.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
)

const (
	FormatVersion = 1
	CipherName    = "aes-256-cbc/evp-md5"
)

// Container is the parsed artifact. Records are opaque ciphertexts in file
// order.
type Container struct {
	Encrypted    bool      `json:"encrypted"`
	Version      int       `json:"version"`
	Cipher       string    `json:"cipher,omitempty"`
	KeyCheck     []byte    `json:"key_check,omitempty"`
	KeyCheckSalt []byte    `json:"key_check_salt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Records      []string  `json:"records"`
}

// wire mirrors Container with pointers so Parse can tell a missing field from
// a zero one.
type wire struct {
	Encrypted    *bool     `json:"encrypted"`
	Version      int       `json:"version"`
	Cipher       string    `json:"cipher"`
	KeyCheck     []byte    `json:"key_check"`
	KeyCheckSalt []byte    `json:"key_check_salt"`
	CreatedAt    time.Time `json:"created_at"`
	Records      *[]string `json:"records"`
}

// Parse decodes and validates a container. Every failure wraps
// common.ErrInvalidContainer.
func Parse(data []byte) (*Container, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", common.ErrInvalidContainer)
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidContainer, err)
	}
	if w.Encrypted == nil || !*w.Encrypted {
		return nil, fmt.Errorf("%w: encrypted marker missing", common.ErrInvalidContainer)
	}
	if w.Records == nil {
		return nil, fmt.Errorf("%w: records missing", common.ErrInvalidContainer)
	}
	if w.Version > FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", common.ErrInvalidContainer, w.Version)
	}
	if w.Cipher != "" && w.Cipher != CipherName {
		return nil, fmt.Errorf("%w: unsupported cipher %q", common.ErrInvalidContainer, w.Cipher)
	}

	return &Container{
		Encrypted:    true,
		Version:      w.Version,
		Cipher:       w.Cipher,
		KeyCheck:     w.KeyCheck,
		KeyCheckSalt: w.KeyCheckSalt,
		CreatedAt:    w.CreatedAt,
		Records:      *w.Records,
	}, nil
}

// Marshal renders the container as indented JSON.
func (c *Container) Marshal() ([]byte, error) {
	if c.Records == nil {
		c.Records = []string{}
	}
	return json.MarshalIndent(c, "", "  ")
}
