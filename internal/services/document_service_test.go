package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/studykit/flashgen/internal/core"
	"github.com/studykit/flashgen/internal/core/generation_engine"
	"github.com/studykit/flashgen/internal/models"
)

type stubDB struct {
	mu    sync.Mutex
	docs  map[string]*models.Document
	decks map[string]*models.Deck
}

func newStubDB() *stubDB {
	return &stubDB{docs: make(map[string]*models.Document), decks: make(map[string]*models.Deck)}
}

func (s *stubDB) CreateDocument(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *stubDB) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id], nil
}

func (s *stubDB) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Document
	for _, d := range s.docs {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *stubDB) UpdateDocumentStatus(ctx context.Context, id, status, errorMessage string) error {
	return nil
}

func (s *stubDB) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *stubDB) CreateDeck(ctx context.Context, deck *models.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks[deck.ID] = deck
	return nil
}

func (s *stubDB) CreateCards(ctx context.Context, cards []models.Card) error { return nil }

func (s *stubDB) CountCardsByDeck(ctx context.Context, deckID string) (int, error) { return 0, nil }

func (s *stubDB) Close() error { return nil }

type stubStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
}

func (s *stubStorage) UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploaded == nil {
		s.uploaded = make(map[string][]byte)
	}
	s.uploaded[key] = data
	return fmt.Sprintf("https://%s.s3.us-east-2.amazonaws.com/%s", bucket, key), nil
}

func (s *stubStorage) DeleteFile(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploaded, key)
	return nil
}

func (s *stubStorage) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploaded[key], nil
}

type stubProvider struct{}

func (stubProvider) Name() string                                   { return "stub" }
func (stubProvider) HealthCheck(ctx context.Context) bool           { return true }
func (stubProvider) Generate(ctx context.Context, s, u string) (string, error) { return "", nil }

type noopExtractor struct{}

func (noopExtractor) Extract(data []byte, filename string) ([]models.PageBlock, error) {
	return nil, nil
}

func newTestService(db core.DbClient, storage core.ObjectClient) *DocumentService {
	// The processor is never started here, so enqueued tasks stay pending.
	p := generation_engine.NewProcessor(db, storage, stubProvider{}, noopExtractor{}, "test-bucket", &generation_engine.ProcessorConfig{
		BudgetChars: 1000,
		MaxCards:    10,
	})
	return NewDocumentService(db, storage, p, "test-bucket")
}

func TestUploadAndEnqueue(t *testing.T) {
	db := newStubDB()
	storage := &stubStorage{}
	svc := newTestService(db, storage)

	doc, taskID, err := svc.UploadAndEnqueue(context.Background(), "user-1", "notes.pdf", "application/pdf", "deck-9", []byte("pdf bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if taskID == "" {
		t.Fatalf("no task id returned")
	}
	if doc.Status != models.DocStatusUploaded {
		t.Fatalf("status %q", doc.Status)
	}
	if doc.DeckID != "deck-9" {
		t.Fatalf("supplied deck id not kept: %q", doc.DeckID)
	}
	if len(db.decks) != 0 {
		t.Fatalf("no deck should be created when one is supplied")
	}

	stored, err := db.GetDocumentByID(context.Background(), doc.ID)
	if err != nil || stored == nil {
		t.Fatalf("document record not persisted: %v", err)
	}
	wantKey := fmt.Sprintf("user-1/%s/notes.pdf", doc.ID)
	if _, ok := storage.uploaded[wantKey]; !ok {
		t.Fatalf("bytes not stored under %q, keys: %v", wantKey, storage.uploaded)
	}
}

func TestUploadCreatesDeckWhenAbsent(t *testing.T) {
	db := newStubDB()
	svc := newTestService(db, &stubStorage{})

	doc, _, err := svc.UploadAndEnqueue(context.Background(), "user-1", "Cell Biology.pdf", "application/pdf", "", []byte("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.DeckID == "" {
		t.Fatalf("document must get a deck")
	}
	deck, ok := db.decks[doc.DeckID]
	if !ok {
		t.Fatalf("deck %q not persisted", doc.DeckID)
	}
	if deck.Name != "Cell Biology" {
		t.Fatalf("deck name %q, want file name without extension", deck.Name)
	}
	if deck.UserID != "user-1" {
		t.Fatalf("deck owner %q", deck.UserID)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := newStubDB()
	storage := &stubStorage{}
	svc := newTestService(db, storage)

	doc, _, err := svc.UploadAndEnqueue(context.Background(), "user-1", "notes.txt", "text/plain", "deck-1", []byte("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := db.GetDocumentByID(context.Background(), doc.ID); got != nil {
		t.Fatalf("document record still present")
	}
	if len(storage.uploaded) != 0 {
		t.Fatalf("stored object not removed: %v", storage.uploaded)
	}

	if err := svc.Delete(context.Background(), doc.ID); err != ErrDocumentNotFound {
		t.Fatalf("second delete: want ErrDocumentNotFound, got %v", err)
	}
}

func TestDeckNameFor(t *testing.T) {
	tests := []struct {
		filename, want string
	}{
		{"notes.pdf", "notes"},
		{"deep/path/slides.pptx", "slides"},
		{"no_extension", "no_extension"},
		{".hidden", "Untitled deck"},
	}
	for _, tt := range tests {
		if got := deckNameFor(tt.filename); got != tt.want {
			t.Errorf("deckNameFor(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
