package utils

import "unicode/utf8"

// DecodeText reports whether data can be treated as text and returns it as a string.
// Bytes are passed through unchanged; only invalid UTF-8 sequences fail decoding.
func DecodeText(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}
