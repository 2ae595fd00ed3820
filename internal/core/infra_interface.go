package core

import (
	"context"

	"github.com/studykit/flashgen/internal/models"
)

// DbClient defines all persistence operations the pipeline and its thin
// HTTP surface need. It abstracts Postgres so higher layers never depend
// on a specific DB.
type DbClient interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string, errorMessage string) error
	DeleteDocument(ctx context.Context, id string) error

	CreateDeck(ctx context.Context, deck *models.Deck) error
	CreateCards(ctx context.Context, cards []models.Card) error
	CountCardsByDeck(ctx context.Context, deckID string) (int, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// The pipeline itself only needs GetFile; upload/delete serve the
// document intake surface.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
