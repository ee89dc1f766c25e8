package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/analysis"
	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/port/broadcast"
	"github.com/praxis-legal/praxis/internal/port/database"
	"github.com/praxis-legal/praxis/internal/port/llm"
	"github.com/praxis-legal/praxis/internal/port/messagequeue"
)

// DraftService generates document drafts for matters. Like analyses,
// drafting jobs are queued and processed asynchronously.
type DraftService struct {
	store   database.Store
	queue   messagequeue.Queue
	orch    *Orchestrator
	hub     broadcast.Broadcaster
	log     *slog.Logger
	metrics AnalysisMetrics
}

// NewDraftService creates a DraftService.
func NewDraftService(store database.Store, queue messagequeue.Queue, orch *Orchestrator, hub broadcast.Broadcaster, log *slog.Logger) *DraftService {
	return &DraftService{store: store, queue: queue, orch: orch, hub: hub, log: log}
}

// SetMetrics attaches a metrics recorder for drafting lifecycle events.
func (s *DraftService) SetMetrics(m AnalysisMetrics) {
	s.metrics = m
}

// draftJob is the queue payload for a requested draft. The prompt inputs
// are re-read from the stored request fields at processing time.
type draftJob struct {
	DraftID      string            `json:"draft_id"`
	Provider     string            `json:"provider,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// Request validates and persists a new draft in pending state and queues
// it for generation. Closed matters do not accept new drafts.
func (s *DraftService) Request(ctx context.Context, matterID string, req analysis.CreateDraftRequest, requestedBy string) (*analysis.Draft, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	m, err := s.store.GetMatter(ctx, matterID)
	if err != nil {
		return nil, err
	}
	if m.Status == matter.StatusClosed {
		return nil, fmt.Errorf("%w: matter is closed", domain.ErrValidation)
	}

	d := analysis.Draft{
		ID:          uuid.NewString(),
		MatterID:    m.ID,
		Template:    req.Template,
		Status:      analysis.StatusPending,
		Provider:    req.Provider,
		RequestedBy: requestedBy,
	}
	created, err := s.store.CreateDraft(ctx, d)
	if err != nil {
		return nil, err
	}

	job := draftJob{
		DraftID:      created.ID,
		Provider:     req.Provider,
		Instructions: req.Instructions,
		Fields:       req.Fields,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal draft job: %w", err)
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectDraftRequested, data); err != nil {
		s.failDraft(ctx, created, "failed to queue draft")
		return nil, fmt.Errorf("queue draft: %w", err)
	}

	s.broadcastStatus(ctx, created)
	return created, nil
}

// Get returns one draft by ID.
func (s *DraftService) Get(ctx context.Context, id string) (*analysis.Draft, error) {
	return s.store.GetDraft(ctx, id)
}

// List returns all drafts for a matter, newest first.
func (s *DraftService) List(ctx context.Context, matterID string) ([]analysis.Draft, error) {
	if _, err := s.store.GetMatter(ctx, matterID); err != nil {
		return nil, err
	}
	return s.store.ListDrafts(ctx, matterID)
}

// Cancel stops a pending or running draft.
func (s *DraftService) Cancel(ctx context.Context, id string) (*analysis.Draft, error) {
	d, err := s.store.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != analysis.StatusPending && d.Status != analysis.StatusRunning {
		return nil, fmt.Errorf("%w: draft is already %s", domain.ErrValidation, d.Status)
	}

	now := time.Now()
	d.Status = analysis.StatusCancelled
	d.CompletedAt = &now
	if err := s.store.UpdateDraft(ctx, *d); err != nil {
		return nil, err
	}

	s.broadcastStatus(ctx, d)
	return d, nil
}

// Subscribe registers the drafting worker on the queue.
func (s *DraftService) Subscribe(ctx context.Context) (func(), error) {
	return s.queue.Subscribe(ctx, messagequeue.SubjectDraftRequested, s.handleRequested)
}

func (s *DraftService) handleRequested(ctx context.Context, _ string, data []byte) error {
	var job draftJob
	if err := json.Unmarshal(data, &job); err != nil {
		s.log.Error("malformed draft job, dropping", "error", err)
		return nil
	}
	return s.process(ctx, job)
}

// process executes one drafting job.
func (s *DraftService) process(ctx context.Context, job draftJob) error {
	d, err := s.store.GetDraft(ctx, job.DraftID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("draft job for unknown draft, dropping", "draft_id", job.DraftID)
			return nil
		}
		return err
	}
	if d.Status != analysis.StatusPending {
		s.log.Info("skipping draft job, not pending", "draft_id", d.ID, "status", d.Status)
		return nil
	}

	d.Status = analysis.StatusRunning
	if err := s.store.UpdateDraft(ctx, *d); err != nil {
		return err
	}
	s.broadcastStatus(ctx, d)

	m, err := s.store.GetMatter(ctx, d.MatterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.failDraft(ctx, d, "matter not found")
			return nil
		}
		return err
	}

	req := analysis.CreateDraftRequest{
		Template:     d.Template,
		Instructions: job.Instructions,
		Fields:       job.Fields,
	}
	system, prompt := buildDraftPrompt(req, m)

	comp, err := s.orch.Complete(ctx, "draft:"+string(d.Template), job.Provider, llm.Request{
		System: system,
		Prompt: prompt,
	})
	if err != nil {
		s.failDraft(ctx, d, err.Error())
		return nil
	}

	if s.cancelledMeanwhile(ctx, d.ID) {
		s.log.Info("draft cancelled during run, discarding result", "draft_id", d.ID)
		return nil
	}

	now := time.Now()
	d.Status = analysis.StatusComplete
	d.Provider = comp.Response.Provider
	d.Model = comp.Response.Model
	d.Content = comp.Response.Text
	d.Usage = analysis.Usage{
		InputTokens:  comp.Response.Usage.InputTokens,
		OutputTokens: comp.Response.Usage.OutputTokens,
		CostUSD:      comp.CostUSD,
	}
	d.CompletedAt = &now
	if err := s.store.UpdateDraft(ctx, *d); err != nil {
		s.log.Error("failed to store draft result", "draft_id", d.ID, "error", err)
		return nil
	}

	s.record(ctx, d.Template, string(analysis.StatusComplete))
	s.broadcastStatus(ctx, d)
	s.publishLifecycle(ctx, messagequeue.SubjectDraftComplete, d)
	s.log.Info("draft complete",
		"draft_id", d.ID, "template", d.Template, "provider", d.Provider,
		"cost_usd", d.Usage.CostUSD)
	return nil
}

func (s *DraftService) failDraft(ctx context.Context, d *analysis.Draft, msg string) {
	if s.cancelledMeanwhile(ctx, d.ID) {
		return
	}

	now := time.Now()
	d.Status = analysis.StatusFailed
	d.Error = msg
	d.CompletedAt = &now
	if err := s.store.UpdateDraft(ctx, *d); err != nil {
		s.log.Error("failed to mark draft failed", "draft_id", d.ID, "error", err)
	}

	s.record(ctx, d.Template, string(analysis.StatusFailed))
	s.broadcastStatus(ctx, d)
	s.publishLifecycle(ctx, messagequeue.SubjectDraftFailed, d)
	s.log.Warn("draft failed", "draft_id", d.ID, "template", d.Template, "error", msg)
}

func (s *DraftService) cancelledMeanwhile(ctx context.Context, id string) bool {
	current, err := s.store.GetDraft(ctx, id)
	if err != nil {
		return false
	}
	return current.Status == analysis.StatusCancelled
}

func (s *DraftService) broadcastStatus(ctx context.Context, d *analysis.Draft) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventDraftStatus, broadcast.DraftStatusEvent{
		DraftID:  d.ID,
		MatterID: d.MatterID,
		Status:   string(d.Status),
		Error:    d.Error,
	})
}

func (s *DraftService) publishLifecycle(ctx context.Context, subject string, d *analysis.Draft) {
	data, err := json.Marshal(map[string]string{
		"draft_id":  d.ID,
		"matter_id": d.MatterID,
		"status":    string(d.Status),
	})
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		s.log.Warn("failed to publish draft event", "subject", subject, "error", err)
	}
}

func (s *DraftService) record(ctx context.Context, template analysis.TemplateKind, status string) {
	if s.metrics != nil {
		s.metrics.RecordAnalysis(ctx, "draft:"+string(template), status)
	}
}
