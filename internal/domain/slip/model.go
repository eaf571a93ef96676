package slip

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MaxSizeBytes is the maximum accepted payment-slip size after decoding.
const MaxSizeBytes = 5 << 20 // 5 MB

// allowedTypes is the MIME allow-list for payment slips.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// Domain errors
var (
	ErrNotDataURI      = errors.New("file data must be a base64 data URI")
	ErrBadBase64       = errors.New("file data is not valid base64")
	ErrUnsupportedType = errors.New("file type must be JPEG, PNG, GIF, or PDF")
	ErrTooLarge        = fmt.Errorf("file must be under %d MB", MaxSizeBytes>>20)
)

// Slip is a decoded, validated payment slip ready for blob storage.
type Slip struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AllowedType reports whether contentType is on the payment-slip allow-list.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[contentType]
	return ok
}

// Extension returns the canonical file extension for an allowed content type.
func Extension(contentType string) string {
	return allowedTypes[contentType]
}

// ParseDataURI decodes a base64 data URI into a validated Slip.
// The content type is taken from declaredType when non-empty, otherwise from the
// data URI header. Size is checked against the decoded payload, not the URI length.
// PRE: fileName is non-empty
// POST: Returns a Slip within the size cap and MIME allow-list, or a domain error
func ParseDataURI(dataURI, fileName, declaredType string) (Slip, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return Slip{}, ErrNotDataURI
	}
	header, b64, found := strings.Cut(dataURI, ",")
	if !found || b64 == "" {
		return Slip{}, ErrNotDataURI
	}

	contentType := strings.TrimSpace(declaredType)
	if contentType == "" {
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	}
	if !AllowedType(contentType) {
		return Slip{}, ErrUnsupportedType
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Slip{}, ErrBadBase64
	}
	if len(data) > MaxSizeBytes {
		return Slip{}, ErrTooLarge
	}
	if len(data) == 0 {
		return Slip{}, ErrBadBase64
	}

	return Slip{
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}, nil
}
