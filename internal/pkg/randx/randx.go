/*
Package randx provides functions for generating cryptographically secure random
codes and unique identifiers.

It is used for the numeric password reset codes emailed to users and for the
connection handles assigned to live gateway sessions.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// ResetCodeLength is the fixed number of digits in a password reset code.
const ResetCodeLength = 6

// ResetCode generates a numeric password reset code using crypto/rand.
// It returns a string of ResetCodeLength decimal digits.
func ResetCode() (string, error) {
	result := make([]byte, ResetCodeLength)

	for i := 0; i < ResetCodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit for reset code: %v", err)
		}

		result[i] = byte('0' + num.Int64())
	}

	return string(result), nil
}

// ConnectionID generates a UUID v4 string to serve as the unique handle of a
// live gateway connection.
func ConnectionID() string {
	return uuid.New().String()
}
