package indexing

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/vector"
)

type embedJob struct {
	id   core.DocumentID
	text string
	vec  []float32
}

// embed vectorizes jobs in batches on the pool, then inserts the vectors in
// job order. It returns how many jobs ended without a usable vector.
// Only cancellation is returned as an error.
func (b *Builder) embed(ctx context.Context, jobs []embedJob, vecs *vector.Index) (int, error) {
	progress := NewProgress(b.progress, "Embedding", len(jobs), b.batchSize)

	var wg sync.WaitGroup
	for start := 0; start < len(jobs); start += b.batchSize {
		if ctx.Err() != nil {
			break
		}
		batch := jobs[start:min(start+b.batchSize, len(jobs))]
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			defer progress.Add(len(batch))
			b.embedBatch(ctx, batch)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return 0, fmt.Errorf("failed to schedule embedding batch: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	progress.Finish()

	failures := 0
	for _, job := range jobs {
		if job.vec == nil {
			failures++
			continue
		}
		if err := vecs.Insert(job.id, job.vec); err != nil {
			b.logger.Warn("discarding vector", "doc", job.id, "err", err)
			failures++
		}
	}
	return failures, nil
}

// embedBatch fills vec for every job it can. A batch that keeps failing is
// retried one text at a time so a single bad input cannot sink the rest.
func (b *Builder) embedBatch(ctx context.Context, batch []embedJob) {
	texts := make([]string, len(batch))
	for i, job := range batch {
		texts[i] = job.text
	}

	var embeddings [][]float32
	err := b.withRetry(ctx, func() error {
		var err error
		embeddings, err = b.embedder.EmbedTexts(ctx, texts)
		if err == nil && len(embeddings) != len(texts) {
			return fmt.Errorf("%w: expected %d, got %d", errEmbeddingCount, len(texts), len(embeddings))
		}
		return err
	})
	if err == nil {
		for i := range batch {
			batch[i].vec = embeddings[i]
		}
		return
	}
	if ctx.Err() != nil {
		return
	}

	b.logger.Warn("batch embedding failed, falling back to single texts", "size", len(batch), "err", err)
	for i := range batch {
		var vec []float32
		err := b.withRetry(ctx, func() error {
			var err error
			vec, err = b.embedder.EmbedText(ctx, batch[i].text)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("embedding failed", "doc", batch[i].id, "err", err)
			continue
		}
		batch[i].vec = vec
	}
}

// withRetry applies the rate limit and retry budget to one request.
func (b *Builder) withRetry(ctx context.Context, request func() error) error {
	return RetryWithBackoff(ctx, b.logger, b.maxAttempts, b.retryBaseDelay, func() error {
		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		return request()
	})
}
