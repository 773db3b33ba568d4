package structure

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for lazy identities. Version suffix enables future algorithm migration.
const DomainLazy = "groqgen/lazy/v1"

// aliasHashLen is the number of hex characters of a lazy identity kept in an alias name.
const aliasHashLen = 16

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Identity computes the content-addressed identity of a lazy hash input.
// It depends only on the token sequence: equal sequences always produce equal
// identities, in any process and any call order.
func Identity(hashInput []string) string {
	return hashWithDomain(DomainLazy, canonicalTokens(hashInput))
}

// AliasName derives the target-language alias for a lazy identity.
func AliasName(identity string) string {
	if len(identity) > aliasHashLen {
		identity = identity[:aliasHashLen]
	}
	return "Ref_" + identity
}

// canonicalTokens encodes tokens as a JSON array of NFC-normalized strings
// with HTML escaping disabled.
func canonicalTokens(tokens []string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, tok := range tokens {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(canonicalString(tok))
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func canonicalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(norm.NFC.String(s))
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
}
