package storage

import (
	"errors"
	"fmt"
	"strings"
)

// SafeRoot is the fixed prefix every managed object key must carry. The
// gateway refuses any key outside it before touching the network, so a
// corrupted catalog row can never reach objects elsewhere in the bucket.
const SafeRoot = "uploads/"

// ErrUnsafeKey marks an object key outside the safe root.
var ErrUnsafeKey = errors.New("storage key outside safe root")

// AttachmentKey builds the object key for a stored attachment name.
func AttachmentKey(storedName string) string {
	return SafeRoot + "attachments/" + storedName
}

// AvatarKey builds the object key for a stored avatar name.
func AvatarKey(storedName string) string {
	return SafeRoot + "avatars/" + storedName
}

func checkKey(key string) error {
	if !strings.HasPrefix(key, SafeRoot) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrUnsafeKey, key)
	}
	return nil
}

// attachmentDisposition builds a Content-Disposition header value that
// forces a download under the original filename. The name is carried
// percent-encoded in the RFC 5987 extended parameter; the plain parameter
// keeps an ASCII fallback for old clients.
func attachmentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiFallback(filename), percentEncode(filename))
}

// asciiFallback replaces bytes that cannot appear in a quoted-string
// filename parameter.
func asciiFallback(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c >= 0x7f || c == '"' || c == '\\' {
			b.WriteByte('_')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// percentEncode encodes a string as an RFC 5987 ext-value: attr-chars pass
// through, everything else is percent-encoded byte-wise.
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '&', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
