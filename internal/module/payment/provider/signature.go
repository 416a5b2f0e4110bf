package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeSignature returns the hex HMAC-SHA256 of "{timestamp}.{body}" under
// the given secret. This is the shared signing scheme for timestamped
// webhook signatures.
func ComputeSignature(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a hex signature against the expected HMAC in
// constant time.
func VerifySignature(secret, timestamp string, body []byte, provided string) bool {
	expected := ComputeSignature(secret, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(provided))
}

// SignatureHeader is the parsed form of a comma-separated signature header
// such as "t=1700000000,te=abc,li=def".
type SignatureHeader struct {
	Timestamp string
	TestSig   string
	LiveSig   string
}

// ParseSignatureHeader splits a comma-separated key=value signature header.
func ParseSignatureHeader(header string) (*SignatureHeader, error) {
	if header == "" {
		return nil, fmt.Errorf("%w: empty signature header", ErrInvalidSignature)
	}

	var parsed SignatureHeader
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return nil, fmt.Errorf("%w: malformed signature header", ErrInvalidSignature)
		}
		switch key {
		case "t":
			parsed.Timestamp = value
		case "te":
			parsed.TestSig = value
		case "li":
			parsed.LiveSig = value
		}
	}
	if parsed.Timestamp == "" {
		return nil, fmt.Errorf("%w: signature header missing timestamp", ErrInvalidSignature)
	}
	return &parsed, nil
}

// VerifyToken compares a flat shared-secret token header in constant time.
func VerifyToken(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(provided))
}
