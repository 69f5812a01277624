package models

import "time"

// FileUpload is a file held in memory before submission persists it.
type FileUpload struct {
	Filename  string `json:"filename"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Content   []byte `json:"-"`
}

// FileReference points at a file already persisted in the object store.
// Export documents carry references, never raw bytes.
type FileReference struct {
	Filename   string    `json:"filename"`
	Key        string    `json:"reference"`
	URL        string    `json:"url,omitempty"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// AnswerValue is the kind-dependent payload of an answer. Exactly one of
// the fields is meaningful for a given question kind: Text for text kinds,
// Selections for choice kinds, Files for uploads.
type AnswerValue struct {
	Text       string       `json:"text,omitempty"`
	Selections []string     `json:"selections,omitempty"`
	Files      []FileUpload `json:"files,omitempty"`
}

// Empty reports whether no payload of any shape is present.
func (v AnswerValue) Empty() bool {
	return v.Text == "" && len(v.Selections) == 0 && len(v.Files) == 0
}

// Answer is one respondent's validated answer to one question. Revising a
// question overwrites the previous Answer.
type Answer struct {
	QuestionID string      `json:"questionId"`
	Value      AnswerValue `json:"value"`
	RecordedAt time.Time   `json:"recordedAt"`
}
