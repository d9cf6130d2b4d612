// Package cryptox holds the key material and stream cipher used to encrypt
// staged bulk files at rest.
package cryptox

import (
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/gophterm/internal/common"
	"golang.org/x/crypto/chacha20"
)

// FileKey is the per-file random key and nonce. Every staged file gets a
// fresh FileKey; it never leaves the process.
type FileKey struct {
	Key   []byte
	Nonce []byte
}

// NewFileKey generates a random 256-bit key and a 96-bit nonce.
func NewFileKey() *FileKey {
	return &FileKey{
		Key:   common.GenerateRandByteArray(chacha20.KeySize),
		Nonce: common.GenerateRandByteArray(chacha20.NonceSize),
	}
}

// Stream returns a fresh keystream positioned at byte offset 0.
//
// The writer and every reader of a staged file each hold their own stream,
// so each can advance independently. XORKeyStream both encrypts and decrypts.
//
// Example:
//
//	fk := cryptox.NewFileKey()
//	enc, _ := fk.Stream()
//	enc.XORKeyStream(buf, buf) // buf is now ciphertext
//
//	dec, _ := fk.Stream()
//	dec.XORKeyStream(buf, buf) // buf is plaintext again
func (k *FileKey) Stream() (cipher.Stream, error) {
	c, err := chacha20.NewUnauthenticatedCipher(k.Key, k.Nonce)
	if err != nil {
		return nil, fmt.Errorf("stream cipher: %w", err)
	}
	return c, nil
}

// Wipe zeroes the key material.
func (k *FileKey) Wipe() {
	common.WipeByteArray(k.Key)
	common.WipeByteArray(k.Nonce)
}
