package cloudapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// AppSecretProof returns the hex HMAC-SHA256 of token keyed by secret.
func AppSecretProof(token, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyAppSecretProof reports whether proof matches token and secret.
func VerifyAppSecretProof(token, secret, proof string) bool {
	expected := AppSecretProof(token, secret)
	return hmac.Equal([]byte(expected), []byte(proof))
}
