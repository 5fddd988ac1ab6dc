package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	codeMin = 100000
	codeMax = 999999

	sessionTokenBytes = 32 // 256 бит
)

// NewSessionToken returns an opaque hex key with at least 256 bits of entropy.
func NewSessionToken() (string, error) {
	return NewRandomHex(sessionTokenBytes)
}

func NewRandomHex(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = sessionTokenBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewNumericCode draws a 6-digit code uniformly from [100000, 999999] using crypto/rand.
func NewNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
