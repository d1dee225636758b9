package models

import (
	"time"

	"github.com/google/uuid"
)

// Evidence is a file submitted against a case. The binary payload lives in
// the object store under StorageKey; this row only carries metadata and the
// sealed flag a judge can flip.
type Evidence struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CaseID      uuid.UUID  `json:"case_id" db:"case_id"`
	SessionID   *uuid.UUID `json:"session_id,omitempty" db:"session_id"`
	UploaderID  uuid.UUID  `json:"uploader_id" db:"uploader_id"`
	Title       string     `json:"title" db:"title"`
	Filename    string     `json:"filename" db:"filename"`
	StorageKey  string     `json:"storage_key" db:"storage_key"`
	ContentType string     `json:"content_type" db:"content_type"`
	SizeBytes   int64      `json:"size_bytes" db:"size_bytes"`
	Sealed      bool       `json:"sealed" db:"sealed"`
	SealedAt    *time.Time `json:"sealed_at,omitempty" db:"sealed_at"`
	SealedBy    *uuid.UUID `json:"sealed_by,omitempty" db:"sealed_by"`
	UploadedAt  time.Time  `json:"uploaded_at" db:"uploaded_at"`
}

// NewEvidence creates an unsealed evidence record. The storage key is
// assigned by the object store before insert.
func NewEvidence(caseID, uploaderID uuid.UUID, sessionID *uuid.UUID, title, filename, contentType string, sizeBytes int64) *Evidence {
	return &Evidence{
		ID:          uuid.New(),
		CaseID:      caseID,
		SessionID:   sessionID,
		UploaderID:  uploaderID,
		Title:       title,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		UploadedAt:  time.Now().UTC(),
	}
}
