package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/five82/chanwatch/imageboard"
	"github.com/five82/chanwatch/internal/state"
)

// Watcher keeps a set of threads current and summarizes them for the UI.
//
// With thread ids it watches exactly those threads, and keeps showing a
// thread after it is gone. Without ids it follows the first page of the
// board.
type Watcher struct {
	board *imageboard.Board
	ids   []int

	held      map[int]*imageboard.Thread
	lastLive  map[int]int
	refreshed bool
}

func NewWatcher(board *imageboard.Board, ids []int) *Watcher {
	return &Watcher{
		board:    board,
		ids:      ids,
		held:     make(map[int]*imageboard.Thread),
		lastLive: make(map[int]int),
	}
}

// Board is the name of the watched board.
func (w *Watcher) Board() string { return w.board.Name() }

// Refresh updates the watched threads and returns their summaries. It is
// not safe to call concurrently.
//
// When only some threads fail, the summaries of the others are returned
// together with the joined error.
func (w *Watcher) Refresh(ctx context.Context) ([]state.ThreadSummary, error) {
	var threads []*imageboard.Thread
	var err error
	if len(w.ids) > 0 {
		threads, err = w.refreshThreads(ctx)
	} else {
		threads, err = w.refreshFrontPage(ctx)
	}
	if err != nil && len(threads) == 0 {
		return nil, err
	}

	summaries := make([]state.ThreadSummary, len(threads))
	for i, t := range threads {
		live := liveReplies(t)
		delta := 0
		if prev, ok := w.lastLive[t.ID()]; ok {
			delta = live - prev
		}
		w.lastLive[t.ID()] = live
		summaries[i] = state.Summarize(t, delta)
	}
	return summaries, err
}

func (w *Watcher) refreshThreads(ctx context.Context) ([]*imageboard.Thread, error) {
	log := zerolog.Ctx(ctx)
	var errs []error

	if w.refreshed {
		if err := w.board.RefreshCache(ctx, false); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, err)
		}
	}
	w.refreshed = true

	threads := make([]*imageboard.Thread, 0, len(w.ids))
	for _, id := range w.ids {
		t, ok := w.held[id]
		if !ok {
			fetched, err := w.board.GetThread(ctx, id, imageboard.WithoutUpdate())
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				errs = append(errs, err)
				continue
			}
			if fetched == nil {
				log.Warn().Str("board", w.board.Name()).Int("thread", id).Msg("thread not found")
				continue
			}
			w.held[id] = fetched
			t = fetched
		}
		threads = append(threads, t)
	}
	return threads, errors.Join(errs...)
}

func (w *Watcher) refreshFrontPage(ctx context.Context) ([]*imageboard.Thread, error) {
	threads, err := w.board.GetThreads(ctx, 1)
	if err != nil {
		return nil, err
	}
	if err := w.board.RefreshCache(ctx, true); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return threads, err
	}
	return threads, nil
}

func liveReplies(t *imageboard.Thread) int {
	n := 0
	for _, p := range t.Replies() {
		if !p.Deleted() {
			n++
		}
	}
	return n
}
