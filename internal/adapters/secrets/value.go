package secrets

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// StoreKeyField is the JSON key holding the store key when a secret is stored as an object
const StoreKeyField = "store_key"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// extractValue returns the secret payload. JSON objects are searched for "store_key",
// then "value"; anything else is returned as plain text without its trailing newline.
func extractValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return strings.TrimRight(raw, "\r\n")
	}

	var obj map[string]interface{}
	if err := jsonAPI.Unmarshal([]byte(trimmed), &obj); err != nil {
		return trimmed
	}
	for _, key := range []string{StoreKeyField, "value"} {
		if s, ok := obj[key].(string); ok {
			return s
		}
	}
	return ""
}
