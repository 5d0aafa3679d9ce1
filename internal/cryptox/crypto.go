// Package cryptox is the cipher adapter: passphrase based AES encryption in
// the OpenSSL "Salted__" format (the format CryptoJS.AES produces), plus an
// argon2id key check stored next to the ciphertexts.
//
// The passphrase ships with every checker, so this is obfuscation rather than
// secrecy: nothing here authenticates the ciphertext.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltedMagic = "Salted__"
	saltSize    = 8
	keySize     = 32
)

// ErrDecrypt is returned for every ciphertext that cannot be turned back into
// text: bad base64, missing header, wrong block size, bad padding or non
// UTF-8 output. A wrong passphrase usually ends up here too.
var ErrDecrypt = errors.New("decrypt failed")

// randRead is a test seam for crypto/rand.
var randRead = rand.Read

// Encrypt encrypts plaintext with a key and IV derived from passphrase and a
// fresh random salt. The result is base64 text.
func Encrypt(plaintext, passphrase string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := randRead(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	return EncryptWithSalt(plaintext, passphrase, salt)
}

// EncryptWithSalt is Encrypt with a caller-chosen 8-byte salt, which makes
// the output deterministic.
func EncryptWithSalt(plaintext, passphrase string, salt []byte) (string, error) {
	if len(salt) != saltSize {
		return "", fmt.Errorf("salt must be %d bytes, got %d", saltSize, len(salt))
	}

	key, iv := deriveKeyIV([]byte(passphrase), salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(saltedMagic)+saltSize+len(padded))
	copy(out, saltedMagic)
	copy(out[len(saltedMagic):], salt)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(saltedMagic)+saltSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. It never panics on malformed input; every failure
// wraps ErrDecrypt.
func Decrypt(ciphertext, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrDecrypt, err)
	}

	header := len(saltedMagic) + saltSize
	if len(raw) < header+aes.BlockSize || !bytes.HasPrefix(raw, []byte(saltedMagic)) {
		return "", fmt.Errorf("%w: missing salt header", ErrDecrypt)
	}
	body := raw[header:]
	if len(body)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not a multiple of the block size", ErrDecrypt)
	}

	key, iv := deriveKeyIV([]byte(passphrase), raw[len(saltedMagic):header])
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: plaintext is not utf-8", ErrDecrypt)
	}
	return string(plain), nil
}

// deriveKeyIV is OpenSSL's EVP_BytesToKey with MD5 and one iteration,
// producing a 32-byte key and a 16-byte IV.
func deriveKeyIV(passphrase, salt []byte) (key, iv []byte) {
	var derived, prev []byte
	for len(derived) < keySize+aes.BlockSize {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keySize], derived[keySize : keySize+aes.BlockSize]
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append([]byte{}, b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, errors.New("bad padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, errors.New("bad padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errors.New("bad padding")
		}
	}
	return b[:len(b)-n], nil
}

// DeriveKeyCheck stretches the passphrase with argon2id. The checker compares
// the result with the value the sealer stored to spot a key mismatch early.
func DeriveKeyCheck(passphrase, salt []byte) []byte {
	return MakeVerifier(argon2.IDKey(passphrase, salt, 1, 16*1024, 2, 32))
}

// MakeVerifier hashes derived key material so it can be stored.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// VerifyKeyCheck reports whether passphrase reproduces want under salt.
func VerifyKeyCheck(passphrase, salt, want []byte) bool {
	return subtle.ConstantTimeCompare(DeriveKeyCheck(passphrase, salt), want) == 1
}
