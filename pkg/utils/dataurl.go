package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidDataURL = errors.New("invalid data URL")

// dataURLPrefix matches "data:<mime>[;params],". Malformed parameter lists are
// swallowed up to the first comma.
var dataURLPrefix = regexp.MustCompile(`(?i)^data:([^,;]*)[^,]*,`)

// IsInline reports whether s looks like a data URL.
func IsInline(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "data:")
}

// IsRemote reports whether s is an http or https URL.
func IsRemote(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// FromInline decodes the payload of a base64 data URL. A missing or mangled
// prefix is stripped on a best-effort basis and bare base64 is accepted.
func FromInline(dataURL string) ([]byte, error) {
	payload := dataURLPrefix.ReplaceAllString(strings.TrimSpace(dataURL), "")
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	// Unpadded and URL-safe variants show up from some browser encoders.
	unpadded := strings.TrimRight(payload, "=")
	if data, rawErr := base64.RawStdEncoding.DecodeString(unpadded); rawErr == nil {
		return data, nil
	}
	if data, rawErr := base64.RawURLEncoding.DecodeString(unpadded); rawErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
}

// InlineMimeType returns the MIME type declared in a data URL prefix, or ""
// when none is present.
func InlineMimeType(dataURL string) string {
	m := dataURLPrefix.FindStringSubmatch(strings.TrimSpace(dataURL))
	if m == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(m[1]))
}

// ToInline frames data as a base64 data URL of the given MIME type.
func ToInline(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
