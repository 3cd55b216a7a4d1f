package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"avito-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedExtractor returns one batch per call, then empty batches
type scriptedExtractor struct {
	batches [][]string
	errs    []error
	calls   int
}

func (e *scriptedExtractor) Extract(ctx context.Context) ([]string, error) {
	i := e.calls
	e.calls++
	var urls []string
	var err error
	if i < len(e.batches) {
		urls = e.batches[i]
	}
	if i < len(e.errs) {
		err = e.errs[i]
	}
	return urls, err
}

// cancellingExtractor cancels the run while a pass is in flight, the way
// SIGINT does during a settle delay or marker wait
type cancellingExtractor struct {
	cancel context.CancelFunc
	urls   []string
	calls  int
}

func (e *cancellingExtractor) Extract(ctx context.Context) ([]string, error) {
	e.calls++
	e.cancel()
	return e.urls, ctx.Err()
}

type recordingSink struct {
	batches [][]models.Item
	ctxErrs []error
	err     error
}

func (s *recordingSink) Publish(ctx context.Context, items []models.Item) error {
	s.batches = append(s.batches, items)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}

func TestRun_StopsAfterIdlePasses(t *testing.T) {
	ex := &scriptedExtractor{batches: [][]string{
		{"https://www.avito.ru/item/1", "https://www.avito.ru/item/2"},
		nil,
		{"https://www.avito.ru/item/3"},
	}}
	sink := &recordingSink{}
	s := NewScheduler(ex, Options{SearchURL: "https://www.avito.ru/moskva", IdlePasses: 2}, sink)
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	items, err := s.Run(context.Background())
	require.NoError(t, err)

	// passes 1..3 produce results, 4 and 5 are idle
	assert.Equal(t, 5, ex.calls)
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].Pass)
	assert.Equal(t, 3, items[2].Pass)
	assert.Equal(t, "https://www.avito.ru/moskva", items[2].SearchURL)
	assert.Equal(t, fixed, items[2].FoundAt)

	require.Len(t, sink.batches, 2)
	assert.Len(t, sink.batches[0], 2)
	assert.Len(t, sink.batches[1], 1)
}

func TestRun_MaxPasses(t *testing.T) {
	ex := &scriptedExtractor{batches: [][]string{{"a"}, {"b"}, {"c"}, {"d"}}}
	s := NewScheduler(ex, Options{MaxPasses: 2})

	items, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ex.calls)
	assert.Len(t, items, 2)
}

func TestRun_ExtractionErrorStopsButKeepsItems(t *testing.T) {
	closed := errors.New("page closed")
	ex := &scriptedExtractor{
		batches: [][]string{{"a"}, {"b"}},
		errs:    []error{nil, closed},
	}
	sink := &recordingSink{}
	s := NewScheduler(ex, Options{MaxPasses: 5}, sink)

	items, err := s.Run(context.Background())
	assert.ErrorIs(t, err, closed)
	assert.Len(t, items, 2)
	assert.Len(t, sink.batches, 2, "batch returned alongside the error is still published")
}

func TestRun_SinkErrorsAreNotFatal(t *testing.T) {
	ex := &scriptedExtractor{batches: [][]string{{"a"}, {"b"}}}
	failing := &recordingSink{err: errors.New("telegram down")}
	ok := &recordingSink{}
	s := NewScheduler(ex, Options{MaxPasses: 2}, failing, ok)

	items, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Len(t, ok.batches, 2)
}

func TestRun_ContextCancel(t *testing.T) {
	ex := &scriptedExtractor{batches: [][]string{{"a"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScheduler(ex, Options{PassInterval: time.Hour})
	items, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ex.calls)
	assert.Len(t, items, 1)
}

func TestRun_CancelDuringPassIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex := &cancellingExtractor{cancel: cancel, urls: []string{"a", "b"}}
	sink := &recordingSink{}

	s := NewScheduler(ex, Options{MaxPasses: 5}, sink)
	items, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ex.calls)
	assert.Len(t, items, 2)

	require.Len(t, sink.batches, 1, "URLs found before the cancel are still published")
	assert.NoError(t, sink.ctxErrs[0])
}
