package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studykit/flashgen/internal/core"
	"github.com/studykit/flashgen/internal/core/generation_engine"
	"github.com/studykit/flashgen/internal/models"
)

// ErrDocumentNotFound is returned when an operation targets a document id
// with no record.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentService glues the intake surface to the pipeline: store bytes,
// create the Document record, enqueue generation.
type DocumentService struct {
	db        core.DbClient
	storage   core.ObjectClient
	processor *generation_engine.Processor
	bucket    string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, processor *generation_engine.Processor, bucket string) *DocumentService {
	return &DocumentService{db: db, storage: storage, processor: processor, bucket: bucket}
}

// UploadAndEnqueue stores the uploaded bytes, creates the document record
// (status uploaded) and schedules generation. When no deck is supplied a
// fresh one named after the file is created so generated cards have an
// owner. Returns the document and the processing task id for polling.
func (s *DocumentService) UploadAndEnqueue(ctx context.Context, userID, filename, contentType, deckID string, data []byte) (*models.Document, string, error) {
	docID := uuid.NewString()
	key := s.objectKey(userID, docID, filename)

	url, err := s.storage.UploadFile(ctx, s.bucket, key, data, contentType)
	if err != nil {
		return nil, "", fmt.Errorf("store document: %w", err)
	}

	if deckID == "" {
		deck := &models.Deck{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      deckNameFor(filename),
			CreatedAt: time.Now(),
		}
		if err := s.db.CreateDeck(ctx, deck); err != nil {
			return nil, "", fmt.Errorf("create deck: %w", err)
		}
		deckID = deck.ID
	}

	now := time.Now()
	doc := &models.Document{
		ID:          docID,
		UserID:      userID,
		FileName:    filename,
		StorageURL:  url,
		ContentType: contentType,
		DeckID:      deckID,
		Status:      models.DocStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, "", fmt.Errorf("create document record: %w", err)
	}

	taskID, err := s.processor.Enqueue(doc.ID)
	if err != nil {
		return nil, "", fmt.Errorf("enqueue processing: %w", err)
	}
	return doc, taskID, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.db.GetDocumentByID(ctx, id)
}

func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

func (s *DocumentService) CardCount(ctx context.Context, deckID string) (int, error) {
	return s.db.CountCardsByDeck(ctx, deckID)
}

// Delete removes the document record and its stored bytes. Deleting while a
// generation task is running is allowed; the pipeline re-checks the record
// before persisting cards and discards its work if the document is gone.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	if err := s.db.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}

	// Object removal is best effort: the record is already gone and an
	// orphaned object is harmless.
	bucket, key := objectLocation(doc.StorageURL, s.bucket)
	if key != "" {
		if err := s.storage.DeleteFile(ctx, bucket, key); err != nil {
			log.Printf("document %s: could not delete stored object %s/%s: %v", id, bucket, key, err)
		}
	}
	return nil
}

func (s *DocumentService) objectKey(userID, docID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", userID, docID, filepath.Base(filename))
}

// objectLocation resolves the bucket and key of a stored document from its
// virtual-hosted-style S3 URL, falling back to the configured bucket.
func objectLocation(storageURL, fallbackBucket string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(storageURL, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	if i := strings.Index(host, "."); i > 0 {
		bucket = host[:i]
	}
	if bucket == "" {
		bucket = fallbackBucket
	}
	return bucket, key
}

func deckNameFor(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" {
		return "Untitled deck"
	}
	return base
}
