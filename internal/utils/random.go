package utils

import (
	"crypto/rand"
	"math/big"
)

// RandomNumericString generates a random string containing only digits. The first
// digit is never zero so codes always have the requested length when read as numbers.
func RandomNumericString(length int) (string, error) {
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		n := int64(len(digits))
		offset := int64(0)
		if i == 0 {
			n, offset = 9, 1
		}
		num, err := rand.Int(rand.Reader, big.NewInt(n))
		if err != nil {
			return "", err
		}
		b[i] = digits[num.Int64()+offset]
	}
	return string(b), nil
}
