package generation

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

var extensionsByMIME = map[string]string{
	"image/webp": "webp",
	"image/png":  "png",
	"image/jpeg": "jpeg",
}

// FormatFromBytes sniffs data and returns the storage extension for it.
func FormatFromBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrUnsupportedFormat)
	}
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if ext, ok := extensionsByMIME[m.String()]; ok {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
}

// FormatFromMIME maps a declared content type onto a storage extension.
func FormatFromMIME(contentType string) (string, bool) {
	ext, ok := extensionsByMIME[contentType]
	return ext, ok
}
