package utils

import (
	"crypto/rand"
	"encoding/hex"
	"unicode/utf8"
)

// RandomHex generates a random hexadecimal string of length 2n.
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Truncate caps s at n runes, never splitting a multi-byte character.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
