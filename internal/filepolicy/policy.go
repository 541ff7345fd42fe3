// Package filepolicy decides which uploads the platform accepts: the
// content-type allow-list, per-category size ceilings, previewability,
// and the generated stored names files are kept under.
package filepolicy

import "strings"

// Category groups allowed content types for size limits and messaging.
type Category int

const (
	CategoryImage Category = iota
	CategoryVideo
	CategoryAudio
	CategoryDocument
)

func (c Category) String() string {
	switch c {
	case CategoryImage:
		return "image"
	case CategoryVideo:
		return "video"
	case CategoryAudio:
		return "audio"
	case CategoryDocument:
		return "document"
	default:
		return "unknown"
	}
}

// typeSpec binds a declared content type to its permitted extensions.
type typeSpec struct {
	category   Category
	extensions []string
}

func (s typeSpec) allows(ext string) bool {
	for _, e := range s.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// contentTypes is the closed allow-list. A type absent from this map is
// rejected no matter what extension the filename carries.
var contentTypes = map[string]typeSpec{
	"image/jpeg": {CategoryImage, []string{"jpg", "jpeg"}},
	"image/png":  {CategoryImage, []string{"png"}},
	"image/gif":  {CategoryImage, []string{"gif"}},
	"image/webp": {CategoryImage, []string{"webp"}},

	"video/mp4":       {CategoryVideo, []string{"mp4"}},
	"video/quicktime": {CategoryVideo, []string{"mov"}},
	"video/webm":      {CategoryVideo, []string{"webm"}},

	"audio/mpeg": {CategoryAudio, []string{"mp3"}},
	"audio/wav":  {CategoryAudio, []string{"wav"}},
	"audio/ogg":  {CategoryAudio, []string{"ogg"}},
	"audio/mp4":  {CategoryAudio, []string{"m4a"}},

	"application/pdf":    {CategoryDocument, []string{"pdf"}},
	"application/msword": {CategoryDocument, []string{"doc"}},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {CategoryDocument, []string{"docx"}},
	"application/vnd.ms-excel": {CategoryDocument, []string{"xls"}},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {CategoryDocument, []string{"xlsx"}},
	"application/vnd.ms-powerpoint": {CategoryDocument, []string{"ppt"}},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {CategoryDocument, []string{"pptx"}},
	"text/plain": {CategoryDocument, []string{"txt", "log", "md"}},
	"text/csv":   {CategoryDocument, []string{"csv"}},
}

// AbsoluteMaxBytes caps every upload regardless of category.
const AbsoluteMaxBytes int64 = 50 << 20

// categoryMaxBytes holds per-category ceilings. A ceiling above the
// absolute cap means the absolute cap governs for that category.
var categoryMaxBytes = map[Category]int64{
	CategoryImage:    10 << 20,
	CategoryVideo:    100 << 20,
	CategoryAudio:    20 << 20,
	CategoryDocument: 20 << 20,
}

// previewableTypes may be served inline; everything else is download-only.
var previewableTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// CanonicalType lower-cases a declared content type and strips any
// parameters (e.g. "; charset=utf-8"). The second result reports whether
// the type is on the allow-list.
func CanonicalType(contentType string) (string, bool) {
	ct := contentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	_, ok := contentTypes[ct]
	return ct, ok
}

// CategoryOf returns the allow-list category for a declared content type.
func CategoryOf(contentType string) (Category, bool) {
	ct, ok := CanonicalType(contentType)
	if !ok {
		return 0, false
	}
	return contentTypes[ct].category, true
}

// MaxBytes returns the governing size limit for a category, which is the
// category ceiling or the absolute cap, whichever is smaller.
func MaxBytes(c Category) int64 {
	limit := categoryMaxBytes[c]
	if limit == 0 || limit > AbsoluteMaxBytes {
		return AbsoluteMaxBytes
	}
	return limit
}

// Previewable reports whether a content type may be served inline.
func Previewable(contentType string) bool {
	ct, _ := CanonicalType(contentType)
	return previewableTypes[ct]
}

// CheckSize enforces the category ceiling and the absolute cap. The more
// restrictive of the two governs, and the returned error names the
// governing limit.
func CheckSize(contentType string, size int64) error {
	ct, ok := CanonicalType(contentType)
	if !ok {
		return &UnsupportedTypeError{ContentType: contentType}
	}
	if size <= 0 {
		return ErrEmptyFile
	}

	cat := contentTypes[ct].category
	ceiling := categoryMaxBytes[cat]
	limit := ceiling
	absolute := false
	if ceiling > AbsoluteMaxBytes {
		limit = AbsoluteMaxBytes
		absolute = true
	}

	if size > limit {
		return &SizeLimitError{Category: cat, Limit: limit, Absolute: absolute}
	}
	return nil
}
