package ai

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImagePolicy bounds chat attachments before they are sent to a provider.
type ImagePolicy struct {
	MaxBytes     int
	AllowedTypes []string
}

// ParseDataURI decodes a "data:<mimetype>;base64,<payload>" attachment and
// checks its sniffed content type against the policy.
func ParseDataURI(uri string, policy ImagePolicy) (*Image, error) {
	trimmed := strings.TrimSpace(uri)
	if !strings.HasPrefix(trimmed, "data:") {
		return nil, fmt.Errorf("%w: expected a data URI", ErrInvalidImage)
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(trimmed, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidImage)
	}

	declared, encoding, ok := strings.Cut(meta, ";")
	if !ok || !strings.EqualFold(encoding, "base64") {
		return nil, fmt.Errorf("%w: payload must be base64 encoded", ErrInvalidImage)
	}

	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared == "" {
		return nil, fmt.Errorf("%w: missing mime type", ErrInvalidImage)
	}

	if policy.MaxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > policy.MaxBytes+2 {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidImage, policy.MaxBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed base64 payload", ErrInvalidImage)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	if policy.MaxBytes > 0 && len(data) > policy.MaxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidImage, policy.MaxBytes)
	}

	detected := mimetype.Detect(data)
	if !isAllowedType(detected, policy.AllowedTypes) {
		return nil, fmt.Errorf("%w: type %s is not allowed", ErrInvalidImage, detected.String())
	}

	mimeType, _, _ := strings.Cut(detected.String(), ";")
	return &Image{MIMEType: mimeType, Data: data, URI: trimmed}, nil
}

func isAllowedType(detected *mimetype.MIME, allowed []string) bool {
	if len(allowed) == 0 {
		return strings.HasPrefix(detected.String(), "image/")
	}

	for _, value := range allowed {
		if detected.Is(value) {
			return true
		}
	}

	return false
}
