// Package ranker orchestrates ranking runs: it owns the session state, fans
// analysis calls out across the uploaded documents, and exposes derived
// views over the aggregated results.
package ranker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/apperrors"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/ingestion"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
)

var (
	// ErrRunInProgress rejects a new run while one is still in flight.
	ErrRunInProgress = errors.New("an analysis run is already in progress")
	// ErrNoDocuments rejects a run with nothing to analyze.
	ErrNoDocuments = errors.New("no documents uploaded")
	// ErrBlankJobDescription rejects a run without a job description.
	ErrBlankJobDescription = errors.New("job description is blank")
)

// Analyzer produces one analysis report per (job description, resume) pair.
type Analyzer interface {
	Analyze(ctx context.Context, jobDescription, resumeText string) (models.AnalysisReport, error)
}

// ProgressFunc is called after each analysis call resolves.
type ProgressFunc func(completed, total int)

// Pipeline holds the session state and runs analysis batches over it. All
// mutation goes through its methods under one mutex, preserving the
// single-writer model of the session.
type Pipeline struct {
	logger   *zap.Logger
	analyzer Analyzer

	mu             sync.RWMutex
	store          *ingestion.DocumentStore
	jobDescription string
	ranked         []models.RankedCandidate
	topPicks       map[string]struct{}
	running        bool
	completed      int
	total          int
	runID          string
	lastErr        error
	cancel         context.CancelFunc
	progressFn     ProgressFunc
}

// New creates an empty pipeline. A nil analyzer means the service credential
// is not configured; uploads still work, runs are rejected with a
// configuration error.
func New(analyzer Analyzer, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		analyzer: analyzer,
		store:    ingestion.NewDocumentStore(),
		topPicks: make(map[string]struct{}),
	}
}

// SetProgressCallback installs the progress callback.
func (p *Pipeline) SetProgressCallback(fn ProgressFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progressFn = fn
}

// FileResult reports the outcome of one uploaded file. Err is nil for
// accepted files; unsupported or corrupt files carry their coded error and
// never stop the rest of the batch.
type FileResult struct {
	FileName   string
	DocumentID string
	Replaced   bool
	Err        error
}

// AddFiles extracts and stores each uploaded file. Partial-batch success is
// the expected mode: unsupported extensions are skipped, corrupt files are
// reported per file, the rest go in.
func (p *Pipeline) AddFiles(files []ingestion.IncomingFile) []FileResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		doc, err := ingestion.Process(f)
		if err != nil {
			p.logger.Warn("skipping file",
				zap.String("file", f.Name),
				zap.Error(err),
			)
			results = append(results, FileResult{FileName: f.Name, Err: err})
			continue
		}

		replaced := p.store.Put(doc)
		p.logger.Info("document stored",
			zap.String("file", doc.FileName),
			zap.String("document_id", doc.ID),
			zap.Bool("replaced", replaced),
			zap.Int("content_chars", len(doc.Content)),
		)
		results = append(results, FileResult{FileName: f.Name, DocumentID: doc.ID, Replaced: replaced})
	}

	return results
}

// RemoveDocument drops a document and its top-pick entry.
func (p *Pipeline) RemoveDocument(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.store.Remove(id) {
		return false
	}
	delete(p.topPicks, id)
	return true
}

// Documents returns the current document set in insertion order.
func (p *Pipeline) Documents() []models.ResumeDocument {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.List()
}

// Document returns one document by identity.
func (p *Pipeline) Document(id string) (models.ResumeDocument, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.Get(id)
}

// SetJobDescription replaces the job description text. Already-ranked
// candidates are not re-scored.
func (p *Pipeline) SetJobDescription(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobDescription = text
}

// JobDescription returns the current job description text.
func (p *Pipeline) JobDescription() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jobDescription
}

// run is one analysis batch: an immutable snapshot of the inputs taken when
// the run started.
type run struct {
	id             string
	ctx            context.Context
	cancel         context.CancelFunc
	jobDescription string
	docs           []models.ResumeDocument
	started        time.Time
}

// Analyze runs one batch synchronously. Preconditions are checked first; on
// any failure the session is left exactly as it was.
func (p *Pipeline) Analyze(ctx context.Context) error {
	r, err := p.beginRun(ctx)
	if err != nil {
		return err
	}
	return p.execute(r)
}

// StartRun begins a batch in the background and returns its run id. The
// outcome is observed through Status.
func (p *Pipeline) StartRun() (string, error) {
	r, err := p.beginRun(context.Background())
	if err != nil {
		return "", err
	}
	go func() {
		_ = p.execute(r)
	}()
	return r.id, nil
}

// CancelRun cancels the in-flight batch, if any.
func (p *Pipeline) CancelRun() bool {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	return true
}

func (p *Pipeline) beginRun(parent context.Context) (*run, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil, ErrRunInProgress
	}
	if p.analyzer == nil {
		return nil, apperrors.New(apperrors.CodeConfiguration, "analysis service credential is not configured")
	}
	if p.store.Len() == 0 {
		return nil, ErrNoDocuments
	}
	if strings.TrimSpace(p.jobDescription) == "" {
		return nil, ErrBlankJobDescription
	}

	ctx, cancel := context.WithCancel(parent)
	r := &run{
		id:             uuid.NewString(),
		ctx:            ctx,
		cancel:         cancel,
		jobDescription: p.jobDescription,
		docs:           p.store.List(),
		started:        time.Now(),
	}

	p.running = true
	p.completed = 0
	p.total = len(r.docs)
	p.runID = r.id
	p.lastErr = nil
	p.ranked = nil // records from a prior run are discarded when a new one starts
	p.cancel = cancel

	p.logger.Info("analysis run started",
		zap.String("run_id", r.id),
		zap.Int("documents", len(r.docs)),
	)

	return r, nil
}

// execute fans one analysis call per document out concurrently and waits for
// all of them. The batch is all-or-nothing: the first failure cancels the
// remaining calls and the whole run ends with an empty ranked set.
func (p *Pipeline) execute(r *run) error {
	defer r.cancel()

	g, ctx := errgroup.WithContext(r.ctx)
	results := make([]models.RankedCandidate, len(r.docs))

	for i, doc := range r.docs {
		g.Go(func() error {
			report, err := p.analyzer.Analyze(ctx, r.jobDescription, doc.Content)
			if err != nil {
				return fmt.Errorf("%s: %w", doc.FileName, err)
			}
			results[i] = models.RankedCandidate{Document: doc, Analysis: report}
			p.noteCompletion(r.id)
			return nil
		})
	}

	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.running = false
	p.cancel = nil

	if err != nil {
		// Already-resolved results are discarded along with the counter.
		p.lastErr = err
		p.ranked = nil
		p.completed = 0
		p.logger.Error("analysis run failed",
			zap.String("run_id", r.id),
			zap.Duration("elapsed", time.Since(r.started)),
			zap.Error(err),
		)
		return err
	}

	// Stored unsorted; ordering belongs to the view layer.
	p.ranked = results
	p.logger.Info("analysis run complete",
		zap.String("run_id", r.id),
		zap.Int("candidates", len(results)),
		zap.Duration("elapsed", time.Since(r.started)),
	)
	return nil
}

func (p *Pipeline) noteCompletion(runID string) {
	p.mu.Lock()
	if p.runID != runID || !p.running {
		p.mu.Unlock()
		return
	}
	p.completed++
	completed, total := p.completed, p.total
	fn := p.progressFn
	p.mu.Unlock()

	if fn != nil {
		fn(completed, total)
	}
}

// Status is a snapshot of the pipeline for progress polling.
type Status struct {
	Running     bool   `json:"running"`
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
	RunID       string `json:"runId,omitempty"`
	RankedCount int    `json:"rankedCount"`
	LastError   string `json:"lastError,omitempty"`
}

// Status returns the current run snapshot.
func (p *Pipeline) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Status{
		Running:     p.running,
		Completed:   p.completed,
		Total:       p.total,
		RunID:       p.runID,
		RankedCount: len(p.ranked),
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}
