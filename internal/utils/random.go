package utils

import (
	"crypto/rand"
	"math/big"
	"time"
)

const numberBytes = "0123456789"

func GenerateRandomNumericString(length int) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(numberBytes)))

	for i := range result {
		num, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			num = big.NewInt(time.Now().UnixNano() % 10)
		}
		result[i] = numberBytes[num.Int64()]
	}

	return string(result)
}

// GenerateProtocol builds the human-facing alert identifier: the UTC
// timestamp of the press followed by a random numeric suffix.
func GenerateProtocol(at time.Time) string {
	return at.UTC().Format(ProtocolTimeLayout) + GenerateRandomNumericString(ProtocolSuffixLength)
}
