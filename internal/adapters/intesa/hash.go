package intesa

import (
	"crypto/sha512"
	"encoding/base64"
	"strings"
)

// Hash algorithm "ver2": every value is escaped, followed by '|', and the escaped
// store key closes the string without a trailing separator.
var hashEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// escapeHashValue escapes backslashes before pipes so a value can never forge a separator
func escapeHashValue(value string) string {
	return hashEscaper.Replace(value)
}

// Canonicalize builds the pipe-delimited hash input for values and storeKey
func Canonicalize(values []string, storeKey string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(escapeHashValue(v))
		b.WriteByte('|')
	}
	b.WriteString(escapeHashValue(storeKey))
	return b.String()
}

// ComputeHash returns base64(SHA-512(canonical string)) over the raw digest bytes
func ComputeHash(values []string, storeKey string) string {
	sum := sha512.Sum512([]byte(Canonicalize(values, storeKey)))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// fingerprint shortens a hash for log lines
func fingerprint(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12] + "..."
}
