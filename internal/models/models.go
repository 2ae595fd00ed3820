package models

import (
	"time"
)

// Document lifecycle statuses. Only the processing engine moves a document
// past "uploaded".
const (
	DocStatusUploaded   = "uploaded"
	DocStatusProcessing = "processing"
	DocStatusCompleted  = "completed"
	DocStatusFailed     = "failed"
)

// Document represents a user-uploaded study document.
type Document struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	FileName     string    `db:"file_name" json:"file_name"`
	StorageURL   string    `db:"storage_url" json:"storage_url"` // S3 URL
	ContentType  string    `db:"content_type" json:"content_type"`
	DeckID       string    `db:"deck_id" json:"deck_id"` // deck the generated cards belong to
	Status       string    `db:"status" json:"status"`   // uploaded | processing | completed | failed
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Deck groups the flashcards generated from one or more documents. Deck
// CRUD lives outside this service; the table exists so cards have an owner.
type Deck struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Card is a persisted flashcard. Source always names the originating
// document and a page reference, e.g. "Biology101.pdf - Page 5".
type Card struct {
	ID        string    `db:"id" json:"id"`
	DeckID    string    `db:"deck_id" json:"deck_id"`
	Question  string    `db:"question" json:"question"`
	Answer    string    `db:"answer" json:"answer"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PageBlock is one page (or slide, or synthetic page group) of extracted
// text. Page numbers are 1-based and strictly increasing within a document.
type PageBlock struct {
	Page int
	Text string
}
