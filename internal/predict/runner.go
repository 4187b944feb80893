package predict

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hle-eval/hle/internal/api"
	"github.com/hle-eval/hle/internal/client"
	"github.com/hle-eval/hle/internal/results"
)

// Runner drives predictions for a question set.
type Runner struct {
	client      *client.Client
	store       *results.Store
	model       string
	temperature float64
	workers     int
}

// NewRunner creates a runner that sends requests for model through c at
// the given temperature, bounded to workers concurrent questions, saving
// results into store.
func NewRunner(c *client.Client, store *results.Store, model string, temperature float64, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		client:      c,
		store:       store,
		model:       model,
		temperature: temperature,
		workers:     workers,
	}
}

// Run attempts every question that does not already have a saved result.
//
// Questions run concurrently up to the worker limit. A failed question is
// logged and counted but does not stop the rest of the run; its result
// file is simply absent, so a re-run picks it up again. Run returns an
// error when the run was cancelled or when any question failed.
func (r *Runner) Run(ctx context.Context, questions []api.Question) error {
	existing, err := r.store.ExistingIDs()
	if err != nil {
		return err
	}

	var pending []api.Question
	for _, q := range questions {
		if !existing[q.ID] {
			pending = append(pending, q)
		}
	}

	if len(pending) == 0 {
		log.Info().Msg("All questions have already been processed")
		return nil
	}

	log.Info().Int("pending", len(pending)).Int("skipped", len(questions)-len(pending)).
		Int("workers", r.workers).Msg("Processing questions")

	var done, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, q := range pending {
		q := q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			log.Debug().Str("question_id", q.ID).Msg("Starting question")

			if err := r.attempt(ctx, q); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				log.Error().Err(err).Str("question_id", q.ID).Msg("Question failed")
				return nil
			}

			n := done.Add(1)
			log.Info().Str("question_id", q.ID).
				Int64("completed", n).Int("total", len(pending)).Msg("Finished question")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d questions failed", n, len(pending))
	}
	return nil
}

// attempt runs one streaming completion, parses it, and saves the result.
func (r *Runner) attempt(ctx context.Context, q api.Question) error {
	content, reasoning, err := r.client.Complete(ctx, api.ChatRequest{
		Model:       r.model,
		Messages:    FormatMessages(q),
		Temperature: r.temperature,
	})
	if err != nil {
		return err
	}

	result := &api.Result{
		ID:          q.ID,
		Question:    q.Question,
		Reasoning:   reasoning,
		RawResponse: content,
		Parsed:      ParseResponse(content),
	}

	return r.store.Save(result)
}
