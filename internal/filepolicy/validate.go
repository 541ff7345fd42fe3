package filepolicy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxNameBytes bounds the canonical filename length in bytes.
const maxNameBytes = 255

var (
	// ErrInvalidName is the generic naming error: undecodable bytes, an
	// empty name, or a name with no usable extension.
	ErrInvalidName = errors.New("invalid file name")

	// ErrEmptyFile rejects zero-byte uploads.
	ErrEmptyFile = errors.New("file is empty")
)

// UnsupportedTypeError reports a declared content type outside the allow-list.
type UnsupportedTypeError struct {
	ContentType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("content type %q is not allowed", e.ContentType)
}

// ExtensionMismatchError reports an extension that is not permitted for the
// declared content type.
type ExtensionMismatchError struct {
	ContentType string
	Extension   string
}

func (e *ExtensionMismatchError) Error() string {
	return fmt.Sprintf("extension %q is not valid for %s uploads", "."+e.Extension, e.ContentType)
}

// NameTooLongError reports a filename over the byte limit.
type NameTooLongError struct {
	Length int
}

func (e *NameTooLongError) Error() string {
	return fmt.Sprintf("file name exceeds %d bytes", maxNameBytes)
}

// SizeLimitError reports a size policy violation. Absolute marks the
// absolute cap as the governing limit rather than the category ceiling.
type SizeLimitError struct {
	Category Category
	Limit    int64
	Absolute bool
}

func (e *SizeLimitError) Error() string {
	if e.Absolute {
		return fmt.Sprintf("file exceeds the %d MB upload limit", e.Limit>>20)
	}
	return fmt.Sprintf("%s files must be %d MB or smaller", e.Category, e.Limit>>20)
}

// CheckFile validates an untrusted filename against the declared content
// type. It returns the canonical base name and its normalized extension.
// The name must be valid UTF-8; no source-charset guessing happens here.
func CheckFile(rawName, contentType string) (canonical, ext string, err error) {
	name := strings.TrimSpace(rawName)
	if name == "" || !utf8.ValidString(name) || strings.ContainsRune(name, '\x00') {
		return "", "", ErrInvalidName
	}

	// Strip any client-supplied path, regardless of separator style.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "", "", ErrInvalidName
	}
	if len(name) > maxNameBytes {
		return "", "", &NameTooLongError{Length: len(name)}
	}

	ct, ok := CanonicalType(contentType)
	if !ok {
		return "", "", &UnsupportedTypeError{ContentType: contentType}
	}

	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "", "", ErrInvalidName
	}
	if !contentTypes[ct].allows(ext) {
		return "", "", &ExtensionMismatchError{ContentType: ct, Extension: ext}
	}

	return name, ext, nil
}
