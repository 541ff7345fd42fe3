package models

import "time"

// Attachment is the catalog record for a stored file. StoredName is the
// generated name clients address the file by; the original name survives
// only as display metadata and in download dispositions.
type Attachment struct {
	ID           int64     `json:"id,string"`
	OwnerID      int64     `json:"owner_id,string"`
	StoredName   string    `json:"filename"`
	OriginalName string    `json:"original_filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	StorageKey   string    `json:"-"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileView is the client-facing projection of an attachment. It never
// carries the storage key or any store credential.
type FileView struct {
	ID               int64     `json:"id,string"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"originalFilename"`
	MimeType         string    `json:"mimeType"`
	Size             int64     `json:"size"`
	UploadedAt       time.Time `json:"uploadedAt"`
	URL              string    `json:"url"`
}

// View builds the client-facing projection.
func (a *Attachment) View() FileView {
	return FileView{
		ID:               a.ID,
		Filename:         a.StoredName,
		OriginalFilename: a.OriginalName,
		MimeType:         a.ContentType,
		Size:             a.Size,
		UploadedAt:       a.CreatedAt,
		URL:              a.URL,
	}
}
