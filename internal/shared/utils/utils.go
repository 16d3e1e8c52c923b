package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"github.com/shopspring/decimal"
)

// GetEnvVariable returns the environment variable value or a fallback.
func GetEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// ParseFloatToDecimal converts an optional float into an optional decimal.
func ParseFloatToDecimal(number *float64) *decimal.Decimal {
	if number == nil {
		return nil
	}
	d := decimal.NewFromFloat(*number)
	return &d
}

const passwordCharset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%&*"

// GeneratePassword returns a random password of the given length drawn from a
// mixed charset. Used for auto-provisioned accounts in the users import.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		buf[i] = passwordCharset[n.Int64()]
	}

	return string(buf), nil
}
