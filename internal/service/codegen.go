package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength   = 8
)

// CodeGenerator возвращает новый код погашения.
type CodeGenerator func() (string, error)

// GenerateCode возвращает CodeLength символов, равномерно выбранных из [A-Z0-9].
func GenerateCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate redemption code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
