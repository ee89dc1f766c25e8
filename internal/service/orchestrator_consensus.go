package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/praxis-legal/praxis/internal/domain/analysis"
	"github.com/praxis-legal/praxis/internal/port/llm"
)

// ConsensusResult carries the fan-out outcome of a consensus-mode run.
type ConsensusResult struct {
	Responses []llm.Response
	Consensus analysis.Consensus
	CostUSD   float64
	Reached   bool
}

// Consensus fans the same request out to every healthy provider in
// parallel and computes a quorum verdict. Quorum 0 means a strict
// majority of the providers that responded. Provider failures reduce the
// respondent pool instead of failing the run; the run fails only when no
// provider responds or the quorum is not met.
func (o *Orchestrator) Consensus(ctx context.Context, req llm.Request) (*ConsensusResult, error) {
	candidates, err := o.candidates("")
	if err != nil {
		return nil, err
	}

	if req.MaxTokens == 0 {
		req.MaxTokens = o.cfg.MaxTokens
	}

	var (
		mu        sync.Mutex
		responses []llm.Response
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range candidates {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, o.cfg.RequestTimeout)
			defer cancel()

			start := time.Now()
			resp, err := p.Complete(cctx, req)

			if o.metrics != nil {
				var cost float64
				if err == nil {
					cost = estimateCost(resp.Model, resp.Usage)
				}
				o.metrics.RecordCompletion(ctx, p.Name(), req.Model, time.Since(start), cost, err != nil)
			}

			if err != nil {
				// A failed provider drops out of the vote.
				o.log.Warn("consensus provider failed", "provider", p.Name(), "error", err)
				return nil
			}

			mu.Lock()
			responses = append(responses, *resp)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(responses) == 0 {
		return nil, ErrNoProvider
	}

	result := &ConsensusResult{Responses: responses}
	for _, r := range responses {
		result.CostUSD += estimateCost(r.Model, r.Usage)
	}
	result.Consensus = tallyVerdicts(responses, o.cfg.ConsensusQuorum)
	result.Reached = result.Consensus.AgreedBy >= result.Consensus.Quorum
	return result, nil
}

// tallyVerdicts groups responses by normalized text and elects the
// largest group's answer as the verdict.
func tallyVerdicts(responses []llm.Response, quorum int) analysis.Consensus {
	if quorum <= 0 {
		quorum = (len(responses) / 2) + 1 // strict majority of respondents
	}

	groups := make(map[string][]int) // normalized text -> response indices
	var order []string
	for i, r := range responses {
		key := normalizeVerdict(r.Text)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	// Largest group wins; ties resolve to the first responder's answer.
	winner := order[0]
	for _, key := range order[1:] {
		if len(groups[key]) > len(groups[winner]) {
			winner = key
		}
	}

	c := analysis.Consensus{
		Quorum:   quorum,
		AgreedBy: len(groups[winner]),
		Verdict:  responses[groups[winner][0]].Text,
	}
	for _, r := range responses {
		c.Providers = append(c.Providers, r.Provider)
	}
	for _, key := range order {
		if key == winner {
			continue
		}
		c.Disagreements = append(c.Disagreements, responses[groups[key][0]].Text)
	}
	return c
}

// normalizeVerdict reduces a response to a comparison key so that
// whitespace and casing differences do not split the vote.
func normalizeVerdict(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
