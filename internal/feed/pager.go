package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/comuna-app/feed-service/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultBatchSize = 5

	// NoCommunity means no community is selected; every fetch is a no-op.
	NoCommunity int64 = 0
)

type Options struct {
	CommunityID int64
	BatchSize   int
	Logger      *zap.Logger
	// Alert receives fetch failures meant for the user.
	Alert func(err error)
	// OnAmbient receives the ambient background token: the first item's
	// blurhash after a refresh, or the visible item's token while scrolling.
	OnAmbient func(token string)
}

// Pager keeps the ordered feed of one community and pages through it in
// fixed-size windows.
//
// The mutex is never held across a fetch. Every fetch captures the generation
// it was issued under and its result is dropped when the generation has moved
// on, so a refresh always wins over anything issued before it.
type Pager struct {
	source    Source
	batchSize int
	logger    *zap.Logger
	alert     func(err error)
	onAmbient func(token string)

	mu          sync.Mutex
	communityID int64
	items       []Item
	hasMore     bool
	inFlight    bool
	generation  uint64
	ambient     string
}

func NewPager(source Source, opts Options) *Pager {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pager{
		source:      source,
		batchSize:   batchSize,
		logger:      logger,
		alert:       opts.Alert,
		onAmbient:   opts.OnAmbient,
		communityID: opts.CommunityID,
		items:       []Item{},
		hasMore:     true,
	}
}

// Refresh replaces the list with the first window of the selected community.
// It may overlap a pending LoadMore, whose result is then discarded.
func (p *Pager) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.communityID == NoCommunity {
		p.mu.Unlock()
		return nil
	}
	p.generation++
	gen := p.generation
	communityID := p.communityID
	p.hasMore = true
	p.inFlight = true
	p.mu.Unlock()

	rows, err := p.source.FetchCommunityPosts(ctx, communityID, 0, p.batchSize-1)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Sugar().Debugf("discarding stale refresh of community(%d), generation %d", communityID, gen)
		return nil
	}
	p.inFlight = false
	if err != nil {
		p.mu.Unlock()
		return p.fail(fmt.Errorf("failed to refresh community(%d) feed: %w", communityID, err))
	}

	rows = p.clamp(rows, communityID)
	p.items = Normalize(rows, p.logger)
	p.hasMore = len(rows) >= p.batchSize
	p.ambient = ""
	if len(p.items) > 0 {
		p.ambient = p.items[0].Blurhash
	}
	ambient := p.ambient
	p.mu.Unlock()

	p.emitAmbient(ambient)
	return nil
}

// LoadMore appends the next window. It is a no-op while any fetch is in
// flight, when the feed is exhausted, or when no community is selected.
func (p *Pager) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.communityID == NoCommunity || p.inFlight || !p.hasMore {
		p.mu.Unlock()
		return nil
	}
	gen := p.generation
	communityID := p.communityID
	start := len(p.items)
	p.inFlight = true
	p.mu.Unlock()

	rows, err := p.source.FetchCommunityPosts(ctx, communityID, start, start+p.batchSize-1)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Sugar().Debugf("discarding stale window [%d, %d] of community(%d)", start, start+p.batchSize-1, communityID)
		return nil
	}
	p.inFlight = false
	if err != nil {
		p.mu.Unlock()
		return p.fail(fmt.Errorf("failed to load more posts of community(%d): %w", communityID, err))
	}

	rows = p.clamp(rows, communityID)
	next := make([]Item, 0, len(p.items)+len(rows))
	next = append(next, p.items...)
	next = append(next, Normalize(rows, p.logger)...)
	p.items = next
	p.hasMore = len(rows) >= p.batchSize
	p.mu.Unlock()

	return nil
}

// OnCommunityChange selects another community, drops the current list and
// any in-flight result, then refreshes.
func (p *Pager) OnCommunityChange(ctx context.Context, communityID int64) error {
	p.mu.Lock()
	p.generation++
	p.communityID = communityID
	p.items = []Item{}
	p.hasMore = true
	p.inFlight = false
	p.ambient = ""
	p.mu.Unlock()

	p.emitAmbient("")

	return p.Refresh(ctx)
}

// OnVisibleItemChange forwards the token of the item currently on screen.
func (p *Pager) OnVisibleItemChange(token string) {
	p.emitAmbient(token)
}

// Items returns a snapshot of the list.
func (p *Pager) Items() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]Item, len(p.items))
	copy(items, p.items)
	return items
}

func (p *Pager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

func (p *Pager) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Ambient returns the token captured by the last successful refresh.
func (p *Pager) Ambient() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ambient
}

func (p *Pager) CommunityID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.communityID
}

func (p *Pager) clamp(rows []*model.FeedPost, communityID int64) []*model.FeedPost {
	if len(rows) <= p.batchSize {
		return rows
	}
	p.logger.Sugar().Warnf("source returned %d rows for community(%d), batch size is %d", len(rows), communityID, p.batchSize)
	return rows[:p.batchSize]
}

func (p *Pager) fail(err error) error {
	p.logger.Sugar().Errorf("%s", err.Error())
	if p.alert != nil {
		p.alert(err)
	}
	return err
}

func (p *Pager) emitAmbient(token string) {
	if p.onAmbient != nil {
		p.onAmbient(token)
	}
}
