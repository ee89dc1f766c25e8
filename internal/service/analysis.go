package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/analysis"
	"github.com/praxis-legal/praxis/internal/port/broadcast"
	"github.com/praxis-legal/praxis/internal/port/database"
	"github.com/praxis-legal/praxis/internal/port/llm"
	"github.com/praxis-legal/praxis/internal/port/messagequeue"
)

// AnalysisMetrics counts analysis lifecycle events. Implemented by the
// otel adapter; nil disables recording.
type AnalysisMetrics interface {
	RecordAnalysis(ctx context.Context, kind, status string)
}

// AnalysisService runs AI analyses against contracts. Requests are queued
// and processed asynchronously; progress is pushed to connected clients.
type AnalysisService struct {
	store   database.Store
	queue   messagequeue.Queue
	orch    *Orchestrator
	hub     broadcast.Broadcaster
	log     *slog.Logger
	metrics AnalysisMetrics
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(store database.Store, queue messagequeue.Queue, orch *Orchestrator, hub broadcast.Broadcaster, log *slog.Logger) *AnalysisService {
	return &AnalysisService{store: store, queue: queue, orch: orch, hub: hub, log: log}
}

// SetMetrics attaches a metrics recorder for analysis lifecycle events.
func (s *AnalysisService) SetMetrics(m AnalysisMetrics) {
	s.metrics = m
}

// analysisJob is the queue payload for a requested analysis. Provider and
// consensus selection travel with the job; the tenant travels in message
// headers.
type analysisJob struct {
	AnalysisID string `json:"analysis_id"`
	Provider   string `json:"provider,omitempty"`
	Consensus  bool   `json:"consensus,omitempty"`
}

// Request validates and persists a new analysis in pending state and
// queues it for processing.
func (s *AnalysisService) Request(ctx context.Context, contractID string, req analysis.CreateRequest, requestedBy string) (*analysis.Analysis, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	c, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Body) == "" {
		return nil, fmt.Errorf("%w: contract has no body to analyze", domain.ErrValidation)
	}

	a := analysis.Analysis{
		ID:          uuid.NewString(),
		ContractID:  c.ID,
		Kind:        req.Kind,
		Status:      analysis.StatusPending,
		Provider:    req.Provider,
		RequestedBy: requestedBy,
	}
	created, err := s.store.CreateAnalysis(ctx, a)
	if err != nil {
		return nil, err
	}

	job := analysisJob{AnalysisID: created.ID, Provider: req.Provider, Consensus: req.Consensus}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis job: %w", err)
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectAnalysisRequested, data); err != nil {
		s.failAnalysis(ctx, created, "failed to queue analysis")
		return nil, fmt.Errorf("queue analysis: %w", err)
	}

	s.record(ctx, created.Kind, "requested")
	s.broadcastStatus(ctx, created)
	return created, nil
}

// Get returns one analysis by ID.
func (s *AnalysisService) Get(ctx context.Context, id string) (*analysis.Analysis, error) {
	return s.store.GetAnalysis(ctx, id)
}

// List returns all analyses for a contract, newest first.
func (s *AnalysisService) List(ctx context.Context, contractID string) ([]analysis.Analysis, error) {
	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return s.store.ListAnalyses(ctx, contractID)
}

// Cancel stops a pending or running analysis. The worker discards its
// result when it finds the row cancelled.
func (s *AnalysisService) Cancel(ctx context.Context, id string) (*analysis.Analysis, error) {
	a, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != analysis.StatusPending && a.Status != analysis.StatusRunning {
		return nil, fmt.Errorf("%w: analysis is already %s", domain.ErrValidation, a.Status)
	}

	now := time.Now()
	a.Status = analysis.StatusCancelled
	a.CompletedAt = &now
	if err := s.store.UpdateAnalysis(ctx, *a); err != nil {
		return nil, err
	}

	s.record(ctx, a.Kind, string(analysis.StatusCancelled))
	s.broadcastStatus(ctx, a)
	return a, nil
}

// Subscribe registers the analysis worker on the queue. The returned
// function cancels the subscription.
func (s *AnalysisService) Subscribe(ctx context.Context) (func(), error) {
	return s.queue.Subscribe(ctx, messagequeue.SubjectAnalysisRequested, s.handleRequested)
}

// handleRequested is the queue handler for analysis jobs. Malformed
// payloads are dropped rather than retried.
func (s *AnalysisService) handleRequested(ctx context.Context, _ string, data []byte) error {
	var job analysisJob
	if err := json.Unmarshal(data, &job); err != nil {
		s.log.Error("malformed analysis job, dropping", "error", err)
		return nil
	}
	return s.process(ctx, job)
}

// process executes one analysis job. Permanent failures mark the row
// failed and return nil; a non-nil return asks the queue to redeliver.
func (s *AnalysisService) process(ctx context.Context, job analysisJob) error {
	a, err := s.store.GetAnalysis(ctx, job.AnalysisID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("analysis job for unknown analysis, dropping", "analysis_id", job.AnalysisID)
			return nil
		}
		return err
	}
	if a.Status != analysis.StatusPending {
		s.log.Info("skipping analysis job, not pending",
			"analysis_id", a.ID, "status", a.Status)
		return nil
	}

	now := time.Now()
	a.Status = analysis.StatusRunning
	a.StartedAt = &now
	if err := s.store.UpdateAnalysis(ctx, *a); err != nil {
		return err
	}
	s.broadcastStatus(ctx, a)

	c, err := s.store.GetContract(ctx, a.ContractID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.failAnalysis(ctx, a, "contract not found")
			return nil
		}
		return err
	}

	system, prompt := buildAnalysisPrompt(a.Kind, c)
	req := llm.Request{System: system, Prompt: prompt}

	if job.Consensus {
		s.runConsensus(ctx, a, req)
	} else {
		s.runSingle(ctx, a, job.Provider, req)
	}
	return nil
}

// runSingle executes the analysis against one provider, with fallback
// handled by the orchestrator.
func (s *AnalysisService) runSingle(ctx context.Context, a *analysis.Analysis, provider string, req llm.Request) {
	s.broadcastProgress(ctx, a, "dispatching")

	comp, err := s.orch.Complete(ctx, string(a.Kind), provider, req)
	if err != nil {
		s.failAnalysis(ctx, a, err.Error())
		return
	}

	a.Provider = comp.Response.Provider
	a.Model = comp.Response.Model
	a.FromCache = comp.FromCache
	a.Summary, a.Findings = parseAnalysisResponse(comp.Response.Text)
	a.Usage = analysis.Usage{
		InputTokens:  comp.Response.Usage.InputTokens,
		OutputTokens: comp.Response.Usage.OutputTokens,
		CostUSD:      comp.CostUSD,
	}
	s.completeAnalysis(ctx, a)
}

// runConsensus fans the analysis out to all healthy providers and records
// the quorum verdict. An unmet quorum fails the run but keeps the vote
// detail for review.
func (s *AnalysisService) runConsensus(ctx context.Context, a *analysis.Analysis, req llm.Request) {
	s.broadcastProgress(ctx, a, "awaiting_consensus")

	res, err := s.orch.Consensus(ctx, req)
	if err != nil {
		s.failAnalysis(ctx, a, err.Error())
		return
	}

	a.Provider = "consensus"
	a.Consensus = &res.Consensus
	for _, r := range res.Responses {
		a.Usage.InputTokens += r.Usage.InputTokens
		a.Usage.OutputTokens += r.Usage.OutputTokens
	}
	a.Usage.CostUSD = res.CostUSD

	if !res.Reached {
		s.failAnalysis(ctx, a, fmt.Sprintf("consensus not reached: %d of %d votes required",
			res.Consensus.AgreedBy, res.Consensus.Quorum))
		return
	}

	a.Summary, a.Findings = parseAnalysisResponse(res.Consensus.Verdict)
	s.completeAnalysis(ctx, a)
}

// completeAnalysis finalizes a successful run unless it was cancelled
// while running.
func (s *AnalysisService) completeAnalysis(ctx context.Context, a *analysis.Analysis) {
	if s.cancelledMeanwhile(ctx, a.ID) {
		s.log.Info("analysis cancelled during run, discarding result", "analysis_id", a.ID)
		return
	}

	now := time.Now()
	a.Status = analysis.StatusComplete
	a.CompletedAt = &now
	if err := s.store.UpdateAnalysis(ctx, *a); err != nil {
		s.log.Error("failed to store analysis result", "analysis_id", a.ID, "error", err)
		return
	}

	s.record(ctx, a.Kind, string(analysis.StatusComplete))
	s.broadcastStatus(ctx, a)
	s.publishLifecycle(ctx, messagequeue.SubjectAnalysisComplete, a)
	s.log.Info("analysis complete",
		"analysis_id", a.ID, "kind", a.Kind, "provider", a.Provider,
		"findings", len(a.Findings), "cost_usd", a.Usage.CostUSD, "from_cache", a.FromCache)
}

// failAnalysis marks a run failed unless it was cancelled while running.
func (s *AnalysisService) failAnalysis(ctx context.Context, a *analysis.Analysis, msg string) {
	if s.cancelledMeanwhile(ctx, a.ID) {
		return
	}

	now := time.Now()
	a.Status = analysis.StatusFailed
	a.Error = msg
	a.CompletedAt = &now
	if err := s.store.UpdateAnalysis(ctx, *a); err != nil {
		s.log.Error("failed to mark analysis failed", "analysis_id", a.ID, "error", err)
	}

	s.record(ctx, a.Kind, string(analysis.StatusFailed))
	s.broadcastStatus(ctx, a)
	s.publishLifecycle(ctx, messagequeue.SubjectAnalysisFailed, a)
	s.log.Warn("analysis failed", "analysis_id", a.ID, "kind", a.Kind, "error", msg)
}

// cancelledMeanwhile re-reads the row to honor cancellations raced with
// the worker.
func (s *AnalysisService) cancelledMeanwhile(ctx context.Context, id string) bool {
	current, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return false
	}
	return current.Status == analysis.StatusCancelled
}

func (s *AnalysisService) broadcastStatus(ctx context.Context, a *analysis.Analysis) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventAnalysisStatus, broadcast.AnalysisStatusEvent{
		AnalysisID: a.ID,
		ContractID: a.ContractID,
		Status:     string(a.Status),
		Error:      a.Error,
	})
}

func (s *AnalysisService) broadcastProgress(ctx context.Context, a *analysis.Analysis, stage string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventAnalysisProgress, broadcast.AnalysisProgressEvent{
		AnalysisID: a.ID,
		ContractID: a.ContractID,
		Stage:      stage,
	})
}

// publishLifecycle emits a terminal-state event for downstream consumers.
// Publish failures are logged; the run outcome is already persisted.
func (s *AnalysisService) publishLifecycle(ctx context.Context, subject string, a *analysis.Analysis) {
	data, err := json.Marshal(map[string]string{
		"analysis_id": a.ID,
		"contract_id": a.ContractID,
		"status":      string(a.Status),
	})
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		s.log.Warn("failed to publish analysis event", "subject", subject, "error", err)
	}
}

func (s *AnalysisService) record(ctx context.Context, kind analysis.Kind, status string) {
	if s.metrics != nil {
		s.metrics.RecordAnalysis(ctx, string(kind), status)
	}
}
