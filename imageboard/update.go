package imageboard

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/internal/oops"
)

// Update fetches the thread again and merges the result. It returns the net
// number of replies that appeared, which is negative when more replies were
// deleted than added.
//
// A thread marked NotFound is skipped unless force is set. When the request
// fails before any response arrives the error is kept in LastPollError and
// Update returns 0 with a nil error so callers simply poll again later. 304
// and 404 also return 0; 404 marks the thread NotFound and removes it from
// the board's cache. Any other status is returned as an error wrapping
// *api.StatusError.
//
// Without force, replies already held are kept as the same *Post values and
// only newer replies are appended; replies missing from the response are
// marked Deleted. With force, or before the first full fetch, the replies are
// rebuilt from scratch and deletions are not reported.
func (t *Thread) Update(ctx context.Context, force bool) (int, error) {
	if t.notFound && !force {
		return 0, nil
	}
	log := zerolog.Ctx(ctx).With().Str("board", t.board.Name()).Int("thread", t.id).Logger()

	var header http.Header
	if t.lastModified != "" {
		header = http.Header{}
		header.Set("If-Modified-Since", t.lastModified)
	}

	url := t.board.urls.ThreadAPI(t.id)
	res, err := t.board.fetcher.Get(ctx, url, header)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		t.lastPollErr = err
		log.Warn().Err(err).Msg("thread update failed, will retry on next poll")
		return 0, nil
	}
	t.lastPollErr = nil

	switch res.StatusCode {
	case http.StatusNotModified:
		return 0, nil
	case http.StatusNotFound:
		t.notFound = true
		t.board.evict(t)
		log.Debug().Msg("thread is gone, evicted from cache")
		return 0, nil
	case http.StatusOK:
		delta, err := t.merge(res, force)
		if err != nil {
			return 0, err
		}
		if delta != 0 {
			log.Debug().Int("delta", delta).Int("last_reply", t.lastReplyID).Msg("thread updated")
		}
		return delta, nil
	default:
		return 0, oops.New(&api.StatusError{Method: http.MethodGet, URL: url, StatusCode: res.StatusCode}, "failed to update thread %s", t)
	}
}

func (t *Thread) merge(res *api.Response, force bool) (int, error) {
	var payload api.ThreadResponse
	if err := res.JSON(&payload); err != nil {
		return 0, oops.New(err, "failed to parse thread %s", t)
	}
	if err := payload.Validate(); err != nil {
		return 0, oops.New(err, "failed to parse thread %s", t)
	}
	if err := checkHead(t.id, payload.Posts[0]); err != nil {
		return 0, oops.New(err, "failed to parse thread %s", t)
	}

	if t.notFound {
		t.notFound = false
		t.board.restore(t)
	}
	t.wantUpdate = false
	t.omittedPosts = 0
	t.omittedImages = 0
	t.lastModified = res.Header.Get("Last-Modified")

	head, rest := payload.Posts[0], payload.Posts[1:]
	before := liveCount(t.replies)
	t.setTopic(head)

	if t.lastReplyID != 0 && !force {
		// A cycle that nets to zero keeps the watermark, so replies past it
		// may already be held.
		threshold := t.lastReplyID
		if n := len(t.replies); n > 0 && t.replies[n-1].Number() > threshold {
			threshold = t.replies[n-1].Number()
		}
		for _, rec := range rest {
			if rec.No > threshold {
				t.replies = append(t.replies, newPost(t, rec))
			}
		}
		t.reconcile(rest)
	} else {
		t.replies = newPosts(t, rest)
	}

	delta := liveCount(t.replies) - before
	if delta == 0 {
		return 0, nil
	}
	t.lastReplyID = t.lastNumber()
	return delta, nil
}

// reconcile marks replies missing from fresh as deleted and refreshes the
// state of the others.
func (t *Thread) reconcile(fresh []api.PostRecord) {
	byNumber := make(map[int]api.PostRecord, len(fresh))
	for _, rec := range fresh {
		byNumber[rec.No] = rec
	}
	for _, p := range t.replies {
		rec, ok := byNumber[p.Number()]
		if !ok {
			p.deleted = true
			continue
		}
		p.deleted = false
		p.refreshFileState(rec)
	}
}

func liveCount(posts []*Post) int {
	n := 0
	for _, p := range posts {
		if !p.deleted {
			n++
		}
	}
	return n
}

// Expand runs an Update when the listing the thread came from omitted
// posts.
func (t *Thread) Expand(ctx context.Context) error {
	if t.omittedPosts <= 0 {
		return nil
	}
	_, err := t.Update(ctx, false)
	return err
}
