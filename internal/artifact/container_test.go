package artifact

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	key  = "MySecretAESKey123"
	salt = "MyUniqueSalt123"
	code = "7561097010000002a00001000001"
)

func TestParse_Valid(t *testing.T) {
	c, err := Parse([]byte(`  {"encrypted": true, "version": 1, "cipher": "aes-256-cbc/evp-md5",
		"created_at": "2025-03-01T10:00:00Z", "records": ["a", "b"]}`))
	require.NoError(t, err)
	assert.True(t, c.Encrypted)
	assert.Equal(t, []string{"a", "b"}, c.Records)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), c.CreatedAt)
}

func TestParse_EmptyRecordsIsValid(t *testing.T) {
	c, err := Parse([]byte(`{"encrypted": true, "records": []}`))
	require.NoError(t, err)
	assert.Empty(t, c.Records)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bare array (legacy)": `["U2FsdGVkX1..."]`,
		"empty":               ``,
		"marker missing":      `{"records": []}`,
		"marker false":        `{"encrypted": false, "records": []}`,
		"marker wrong type":   `{"encrypted": "yes", "records": []}`,
		"records missing":     `{"encrypted": true}`,
		"records wrong type":  `{"encrypted": true, "records": "abc"}`,
		"future version":      `{"encrypted": true, "version": 9, "records": []}`,
		"unknown cipher":      `{"encrypted": true, "cipher": "rot13", "records": []}`,
		"truncated":           `{"encrypted": true, "records": [`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			require.ErrorIs(t, err, common.ErrInvalidContainer)
		})
	}
}

func TestSeal_MarshalParseDecrypt(t *testing.T) {
	origNow := nowFn
	t.Cleanup(func() { nowFn = origNow })
	nowFn = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	c, err := Seal([]string{code, strings.ToUpper(code)}, SealOptions{Key: key, Salt: salt})
	require.NoError(t, err)
	require.Len(t, c.Records, 2)
	assert.Equal(t, CipherName, c.Cipher)
	assert.True(t, cryptox.VerifyKeyCheck([]byte(key), c.KeyCheckSalt, c.KeyCheck))

	data, err := c.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, c.CreatedAt, parsed.CreatedAt)
	assert.Equal(t, c.KeyCheck, parsed.KeyCheck)

	pt, err := cryptox.Decrypt(parsed.Records[0], key)
	require.NoError(t, err)
	assert.Equal(t, salt+code, pt)
}

func TestSeal_Errors(t *testing.T) {
	_, err := Seal([]string{code}, SealOptions{})
	require.ErrorIs(t, err, common.ErrorValidation)

	origEnc := encryptFn
	t.Cleanup(func() { encryptFn = origEnc })
	encryptFn = func(string, string) (string, error) { return "", errors.New("boom") }

	_, err = Seal([]string{code}, SealOptions{Key: key})
	require.ErrorContains(t, err, "record 0")
}

func TestMarshal_NilRecordsBecomeEmptyArray(t *testing.T) {
	c := &Container{Encrypted: true}
	data, err := c.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"records": []`)
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("a\r\n\n  b  \n\r\nc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}
