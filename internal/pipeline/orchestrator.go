package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JimCorrell/ScribeStack/internal/book"
	"github.com/JimCorrell/ScribeStack/internal/parser"
	"github.com/JimCorrell/ScribeStack/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage names, in execution order
const (
	StageParse    = "parse"
	StageClear    = "clear"
	StageEmit     = "emit"
	StageManifest = "manifest"
)

// StageProgress tracks one stage of an extraction run
type StageProgress struct {
	Stage       string     `json:"stage"`
	Status      string     `json:"status"` // pending, running, completed, failed
	Message     string     `json:"message,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PipelineStatus is a snapshot of an extraction run
type PipelineStatus struct {
	BookID    string          `json:"book_id"`
	RunID     string          `json:"run_id"`
	Stages    []StageProgress `json:"stages"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProgressCallback receives a copy of the status after every stage change
type ProgressCallback func(status *PipelineStatus)

// Extractor turns EPUB bytes into chapters
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*parser.Extraction, error)
}

// Orchestrator runs extraction for a book and writes its artifacts
type Orchestrator struct {
	extractor Extractor
	repo      book.Repository
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrchestrator creates a new extraction orchestrator
func NewOrchestrator(extractor Extractor, repo book.Repository, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		repo:      repo,
		logger:    logger.Named("pipeline"),
		now:       time.Now,
	}
}

// ExtractFile reads an EPUB from disk and runs Extract over it
func (o *Orchestrator) ExtractFile(ctx context.Context, path, bookID string, progress ProgressCallback) (*types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return o.Extract(ctx, filepath.Base(path), data, bookID, progress)
}

// Extract parses data, replaces the book's chapter artifacts with the
// result and stores the run manifest. Storage is left untouched when
// parsing fails.
func (o *Orchestrator) Extract(ctx context.Context, source string, data []byte, bookID string, progress ProgressCallback) (*types.Manifest, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book id is required")
	}

	run := &runState{
		status: PipelineStatus{
			BookID: bookID,
			RunID:  uuid.NewString(),
			Stages: []StageProgress{
				{Stage: StageParse, Status: "pending"},
				{Stage: StageClear, Status: "pending"},
				{Stage: StageEmit, Status: "pending"},
				{Stage: StageManifest, Status: "pending"},
			},
		},
		progress: progress,
		now:      o.now,
	}
	logger := o.logger.With(zap.String("book_id", bookID), zap.String("run_id", run.status.RunID))

	// Parse
	run.start(StageParse)
	ext, err := o.extractor.Extract(ctx, data)
	if err != nil {
		run.fail(StageParse, err)
		return nil, err
	}
	run.complete(StageParse, fmt.Sprintf("%d chapters via %s/%s", len(ext.Chapters), ext.Result.Strategy, ext.Result.Tier))
	logger.Info("parsed book",
		zap.String("source", source),
		zap.String("strategy", ext.Result.Strategy),
		zap.String("tier", ext.Result.Tier),
		zap.Int("chapters", len(ext.Chapters)),
		zap.Int("skipped", len(ext.Skipped)),
	)

	// Remove artifacts of earlier runs
	run.start(StageClear)
	removed, err := o.repo.ClearChapters(ctx, bookID)
	if err != nil {
		run.fail(StageClear, err)
		return nil, err
	}
	run.complete(StageClear, fmt.Sprintf("removed %d stale chapters", removed))
	if removed > 0 {
		logger.Debug("removed stale chapters", zap.Int("count", removed))
	}

	// Emit in number order
	run.start(StageEmit)
	for _, ch := range ext.Chapters {
		if err := ctx.Err(); err != nil {
			run.fail(StageEmit, err)
			return nil, err
		}
		ch.BookID = bookID
		if err := o.repo.SaveChapter(ctx, ch); err != nil {
			run.fail(StageEmit, err)
			return nil, err
		}
		logger.Debug("wrote chapter",
			zap.Int("number", ch.Number),
			zap.String("title", ch.Title),
			zap.String("path", ch.Path),
		)
	}
	run.complete(StageEmit, fmt.Sprintf("wrote %d chapters", len(ext.Chapters)))

	// Manifest
	run.start(StageManifest)
	manifest := &types.Manifest{
		BookID:      bookID,
		RunID:       run.status.RunID,
		Source:      source,
		Strategy:    ext.Result.Strategy,
		Tier:        ext.Result.Tier,
		Skipped:     ext.Skipped,
		Chapters:    ext.Chapters,
		GeneratedAt: o.now().UTC(),
	}
	if err := o.repo.SaveManifest(ctx, manifest); err != nil {
		run.fail(StageManifest, err)
		return nil, err
	}
	run.complete(StageManifest, "")

	logger.Info("extraction complete", zap.Int("chapters", len(manifest.Chapters)))
	return manifest, nil
}

// runState carries the status of one Extract call
type runState struct {
	status   PipelineStatus
	progress ProgressCallback
	now      func() time.Time
}

func (r *runState) start(stage string) {
	r.update(stage, func(s *StageProgress) { s.Status = "running" })
}

func (r *runState) complete(stage, message string) {
	now := r.now()
	r.update(stage, func(s *StageProgress) {
		s.Status = "completed"
		s.Message = message
		s.CompletedAt = &now
	})
}

func (r *runState) fail(stage string, err error) {
	r.update(stage, func(s *StageProgress) {
		s.Status = "failed"
		s.Message = err.Error()
	})
}

// update applies fn to the named stage and notifies the callback with a copy
func (r *runState) update(stage string, fn func(*StageProgress)) {
	for i := range r.status.Stages {
		if r.status.Stages[i].Stage == stage {
			fn(&r.status.Stages[i])
			break
		}
	}
	r.status.UpdatedAt = r.now()

	if r.progress != nil {
		statusCopy := r.status
		statusCopy.Stages = make([]StageProgress, len(r.status.Stages))
		copy(statusCopy.Stages, r.status.Stages)
		r.progress(&statusCopy)
	}
}
