package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/chanwatch/imageboard"
)

// PostView is the display data of one post.
type PostView struct {
	Number   int
	Name     string
	Tripcode string
	PosterID string
	Subject  string
	Text     string
	Time     time.Time
	Files    []string // original filenames
	IsOP     bool
	Deleted  bool
}

// ThreadSummary is the display data of one watched thread.
type ThreadSummary struct {
	ID        int
	Subject   string
	URL       string
	Replies   int
	Images    int
	Page      int
	Sticky    bool
	Closed    bool
	Archived  bool
	NotFound  bool
	PollError string
	// Delta is the change in live replies reported by the latest update.
	Delta int
	Posts []PostView
}

// Summarize copies what the UI shows out of t. It must be called from the
// goroutine that owns t.
func Summarize(t *imageboard.Thread, delta int) ThreadSummary {
	sum := ThreadSummary{
		ID:       t.ID(),
		Subject:  t.Topic().Subject(),
		URL:      t.URL(),
		Replies:  t.NumReplies(),
		Images:   t.NumImages(),
		Page:     t.Page(),
		Sticky:   t.Sticky(),
		Closed:   t.Closed(),
		Archived: t.Archived(),
		NotFound: t.NotFound(),
		Delta:    delta,
	}
	if err := t.LastPollError(); err != nil {
		sum.PollError = err.Error()
	}
	posts := t.Posts()
	sum.Posts = make([]PostView, len(posts))
	for i, p := range posts {
		view := PostView{
			Number:   p.Number(),
			Name:     p.Name(),
			Tripcode: p.Tripcode(),
			PosterID: p.PosterID(),
			Subject:  p.Subject(),
			Text:     p.TextComment(),
			Time:     p.Time(),
			IsOP:     p.IsOP(),
			Deleted:  p.Deleted(),
		}
		for _, f := range p.Files() {
			view.Files = append(view.Files, f.OriginalFilename())
		}
		sum.Posts[i] = view
	}
	return sum
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Board               string
	Threads             []ThreadSummary
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the site has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored threads. When err is non-nil and threads is nil
// the previous data is kept and the failure is counted. When both are set the
// threads are stored and the error is recorded without counting a failure,
// since the board was reachable.
func (s *Store) Update(board string, threads []ThreadSummary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Board = board
	s.snapshot.LastUpdated = time.Now()
	if err != nil && threads == nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Threads = cloneThreads(threads)
	s.snapshot.HasData = true
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a deep copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Threads = cloneThreads(s.snapshot.Threads)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneThreads(threads []ThreadSummary) []ThreadSummary {
	if len(threads) == 0 {
		return nil
	}
	dup := make([]ThreadSummary, len(threads))
	for i, t := range threads {
		dup[i] = t
		if t.Posts != nil {
			dup[i].Posts = make([]PostView, len(t.Posts))
			for j, p := range t.Posts {
				dup[i].Posts[j] = p
				if p.Files != nil {
					dup[i].Posts[j].Files = append([]string(nil), p.Files...)
				}
			}
		}
	}
	return dup
}
