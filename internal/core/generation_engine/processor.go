package generation_engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/studykit/flashgen/internal/core"
	"github.com/studykit/flashgen/internal/models"
)

// ProcessorConfig tunes the generation pipeline.
//
// BudgetChars:     per-chunk character budget derived from the active
//                  provider's context window.
// MaxCards:        cap on flashcards per document.
// MaxAttempts:     attempt budget for retryable provider failures.
// GenerateTimeout: ceiling per provider Generate call.
// TaskTimeout:     ceiling for one whole document task; on expiry the task
//                  is failed rather than left processing forever.
// BackoffBase:     base delay for exponential retry backoff.
type ProcessorConfig struct {
	BudgetChars     int
	MaxCards        int
	MaxAttempts     int
	GenerateTimeout time.Duration
	TaskTimeout     time.Duration
	BackoffBase     time.Duration
}

// Processor runs the per-document pipeline (extract → chunk → generate →
// parse → persist) as asynchronous, retryable tasks on a worker pool.
// The queue guarantees at most one in-flight task per document id.
type Processor struct {
	db        core.DbClient
	obj       core.ObjectClient
	provider  core.AIProvider
	extractor core.DocumentExtractor
	cfg       *ProcessorConfig
	bucket    string

	jobs    chan string
	workers *errgroup.Group

	mu       sync.Mutex
	tasks    map[string]*ProcessingTask
	inflight map[string]string // document id -> live task id
}

// NewProcessor constructs the orchestrator with a bounded job queue (64).
func NewProcessor(db core.DbClient, obj core.ObjectClient, provider core.AIProvider, extractor core.DocumentExtractor, bucket string, cfg *ProcessorConfig) *Processor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = time.Minute
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 10 * time.Minute
	}
	return &Processor{
		db:        db,
		obj:       obj,
		provider:  provider,
		extractor: extractor,
		cfg:       cfg,
		bucket:    bucket,
		jobs:      make(chan string, 64),
		tasks:     make(map[string]*ProcessingTask),
		inflight:  make(map[string]string),
	}
}

// Start launches numWorkers goroutines draining the job queue. They run
// until ctx is cancelled; Wait blocks until they drain.
func (p *Processor) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for w := 1; w <= numWorkers; w++ {
		workerID := w
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					log.Printf("processor: worker %d shutting down", workerID)
					return nil
				case taskID := <-p.jobs:
					p.runTask(gctx, taskID)
				}
			}
		})
	}
	p.workers = g
}

// Wait blocks until every worker has exited.
func (p *Processor) Wait() error {
	if p.workers == nil {
		return nil
	}
	return p.workers.Wait()
}

// Enqueue schedules a document for flashcard generation and returns the
// task id immediately. If a task for the same document is already pending
// or running, its id is returned instead of creating a second one.
func (p *Processor) Enqueue(documentID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if taskID, ok := p.inflight[documentID]; ok {
		return taskID, nil
	}

	now := time.Now()
	task := &ProcessingTask{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Status:     TaskStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	select {
	case p.jobs <- task.ID:
	default:
		return "", fmt.Errorf("processing queue is full")
	}

	p.tasks[task.ID] = task
	p.inflight[documentID] = task.ID
	return task.ID, nil
}

// GetTask returns a snapshot of a task's state for status polling.
func (p *Processor) GetTask(taskID string) (ProcessingTask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	task, ok := p.tasks[taskID]
	if !ok {
		return ProcessingTask{}, false
	}
	return *task, true
}

// runTask drives one task through its attempt loop. Retryable provider
// failures reschedule the pipeline with exponential backoff until the
// attempt budget is spent; permanent failures fail on first occurrence.
func (p *Processor) runTask(ctx context.Context, taskID string) {
	p.mu.Lock()
	task, ok := p.tasks[taskID]
	p.mu.Unlock()
	if !ok {
		log.Printf("processor: unknown task %s", taskID)
		return
	}
	documentID := task.DocumentID
	defer func() {
		p.mu.Lock()
		delete(p.inflight, documentID)
		p.mu.Unlock()
	}()

	tctx, cancel := context.WithTimeout(ctx, p.cfg.TaskTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		p.updateTask(task, func(t *ProcessingTask) {
			t.Status = TaskStatusStarted
			t.Attempts = attempt
		})

		err := p.runPipeline(tctx, documentID)
		if err == nil {
			p.updateTask(task, func(t *ProcessingTask) {
				t.Status = TaskStatusSucceeded
				t.LastError = ""
			})
			return
		}

		lastErr = err
		log.Printf("processor: task %s attempt %d/%d failed: %v", taskID, attempt, p.cfg.MaxAttempts, err)

		if !core.IsRetryable(err) || attempt == p.cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(attempt, p.cfg.BackoffBase)
		p.updateTask(task, func(t *ProcessingTask) {
			t.Status = TaskStatusRetrying
			t.LastError = err.Error()
		})
		select {
		case <-tctx.Done():
			lastErr = fmt.Errorf("task deadline exceeded during retry backoff: %w", tctx.Err())
		case <-time.After(delay):
		}
		if tctx.Err() != nil {
			break
		}
	}

	p.failTask(task, documentID, lastErr)
}

// runPipeline executes one full attempt: load document, fetch bytes,
// extract, chunk, generate per chunk sequentially, validate, and persist.
// On success the document is marked completed; all failures return to the
// caller's retry policy untouched.
func (p *Processor) runPipeline(ctx context.Context, documentID string) error {
	doc, err := p.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document not found: %s", documentID)
	}

	if err := p.db.UpdateDocumentStatus(ctx, documentID, models.DocStatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	bucket, key := parseS3URL(doc.StorageURL)
	if bucket == "" {
		bucket = p.bucket
	}
	data, err := p.obj.GetFile(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("fetch document bytes: %w", err)
	}

	blocks, err := p.extractor.Extract(data, doc.FileName)
	if err != nil {
		return err
	}

	chunks := SplitPages(blocks, p.cfg.BudgetChars)
	if len(chunks) == 0 {
		return &core.NoValidCardsError{DocumentID: documentID, Chunks: 0}
	}
	perChunk := cardsPerChunk(p.cfg.MaxCards, len(chunks))

	var cards []Flashcard
	failedChunks := 0
	for i, chunk := range chunks {
		systemPrompt := BuildSystemPrompt(doc.FileName, perChunk)
		userPrompt := BuildUserPrompt(chunk)

		gctx, cancel := context.WithTimeout(ctx, p.cfg.GenerateTimeout)
		raw, err := p.provider.Generate(gctx, systemPrompt, userPrompt)
		cancel()
		if err != nil {
			return err
		}

		parsed, err := ParseFlashcards(raw, doc.FileName, perChunk)
		if err != nil {
			return err
		}
		if len(parsed) == 0 {
			failedChunks++
			log.Printf("processor: document %s chunk %d/%d (pages %d-%d) yielded no valid cards",
				documentID, i+1, len(chunks), chunk.MinPage, chunk.MaxPage)
			continue
		}
		cards = append(cards, parsed...)
	}

	if len(cards) == 0 {
		return &core.NoValidCardsError{DocumentID: documentID, Chunks: len(chunks)}
	}
	if len(cards) > p.cfg.MaxCards {
		cards = cards[:p.cfg.MaxCards]
	}

	// Deletion guard: if the document vanished while we were generating,
	// discard the work rather than write orphaned cards.
	current, err := p.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("pre-persist document check: %w", err)
	}
	if current == nil {
		return fmt.Errorf("document %s was deleted during processing; discarding %d generated cards", documentID, len(cards))
	}

	records := make([]models.Card, len(cards))
	now := time.Now()
	for i, c := range cards {
		records[i] = models.Card{
			ID:        uuid.NewString(),
			DeckID:    current.DeckID,
			Question:  c.Question,
			Answer:    c.Answer,
			Source:    c.Source,
			CreatedAt: now,
		}
	}
	if err := p.db.CreateCards(ctx, records); err != nil {
		return fmt.Errorf("persist cards: %w", err)
	}

	if err := p.db.UpdateDocumentStatus(ctx, documentID, models.DocStatusCompleted, ""); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	log.Printf("processor: document %s completed, %d cards from %d chunk(s) (%d yielded nothing)",
		documentID, len(records), len(chunks), failedChunks)
	return nil
}

func (p *Processor) updateTask(task *ProcessingTask, fn func(*ProcessingTask)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(task)
	task.UpdatedAt = time.Now()
}

// failTask records the terminal failure on both the task and the document.
// Status bookkeeping uses a fresh context so it still lands after a task
// timeout.
func (p *Processor) failTask(task *ProcessingTask, documentID string, cause error) {
	msg := "processing failed"
	if cause != nil {
		msg = cause.Error()
	}
	p.updateTask(task, func(t *ProcessingTask) {
		t.Status = TaskStatusFailed
		t.LastError = msg
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := p.db.UpdateDocumentStatus(ctx, documentID, models.DocStatusFailed, msg); err != nil {
		log.Printf("processor: could not mark document %s failed: %v", documentID, err)
	}
}

// cardsPerChunk spreads the document card budget across chunks, ceiling
// division with a small floor so short chunks still produce something.
func cardsPerChunk(maxCards, numChunks int) int {
	per := (maxCards + numChunks - 1) / numChunks
	if per < 3 {
		per = 3
	}
	return per
}

// parseS3URL extracts the bucket and key from a virtual-hosted-style S3 URL.
// Example: https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func parseS3URL(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	if i := strings.Index(host, "."); i > 0 {
		bucket = host[:i]
	}
	return bucket, key
}
