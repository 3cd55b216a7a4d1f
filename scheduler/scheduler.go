package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"avito-scraper/models"
)

// Extractor runs one extraction pass and returns the URLs it has not
// returned before
type Extractor interface {
	Extract(ctx context.Context) ([]string, error)
}

// Sink receives every batch of new items
type Sink interface {
	Publish(ctx context.Context, items []models.Item) error
}

// Options controls pacing and stop conditions
type Options struct {
	SearchURL    string
	PassInterval time.Duration // Pause between passes
	MaxPasses    int           // 0 means no limit
	IdlePasses   int           // Stop after this many passes in a row found nothing; 0 disables
}

// Scheduler repeatedly runs the extractor against one page and fans new
// items out to the sinks
type Scheduler struct {
	extractor Extractor
	sinks     []Sink
	opts      Options
	now       func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(extractor Extractor, opts Options, sinks ...Sink) *Scheduler {
	return &Scheduler{
		extractor: extractor,
		sinks:     sinks,
		opts:      opts,
		now:       time.Now,
	}
}

// Run performs passes until the context is done or a stop condition is hit
// and returns every item emitted. Extraction errors end the run; sink errors
// are only logged. A context cancelled mid-pass is a normal stop, not an
// extraction error.
func (s *Scheduler) Run(ctx context.Context) ([]models.Item, error) {
	var all []models.Item
	idle := 0

	interval := s.opts.PassInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for pass := 1; s.opts.MaxPasses == 0 || pass <= s.opts.MaxPasses; pass++ {
		if pass > 1 {
			select {
			case <-ctx.Done():
				log.Printf("Scheduler stopped after %d passes\n", pass-1)
				return all, nil
			case <-ticker.C:
			}
		}

		urls, err := s.extractor.Extract(ctx)
		stopped := ctx.Err() != nil
		if len(urls) > 0 {
			items := models.NewItems(urls, s.opts.SearchURL, pass, s.now())
			pubCtx := ctx
			if stopped {
				// the last batch is still delivered after a stop
				pubCtx = context.WithoutCancel(ctx)
			}
			s.publish(pubCtx, items)
			all = append(all, items...)
		}
		if stopped {
			log.Printf("Scheduler stopped during pass %d\n", pass)
			return all, nil
		}
		if err != nil {
			return all, fmt.Errorf("pass %d failed: %w", pass, err)
		}

		log.Printf("Pass %d: %d new URLs, %d total\n", pass, len(urls), len(all))

		if len(urls) == 0 {
			idle++
			if s.opts.IdlePasses > 0 && idle >= s.opts.IdlePasses {
				log.Printf("No new URLs for %d passes, stopping\n", idle)
				return all, nil
			}
		} else {
			idle = 0
		}
	}

	log.Printf("Reached max passes (%d)\n", s.opts.MaxPasses)
	return all, nil
}

func (s *Scheduler) publish(ctx context.Context, items []models.Item) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, items); err != nil {
			log.Printf("Warning: Failed to publish %d items to %T: %v\n", len(items), sink, err)
		}
	}
}
