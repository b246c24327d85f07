package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/leopold/internal/adminauth"
	"github.com/JonMunkholm/leopold/internal/assistant"
	"github.com/JonMunkholm/leopold/internal/csvimport"
	"github.com/JonMunkholm/leopold/internal/shop"
	"github.com/JonMunkholm/leopold/internal/store"
	"github.com/JonMunkholm/leopold/internal/telegram"
)

// SyncTimeout is the maximum duration of one catalog or order sync.
var SyncTimeout = 2 * time.Minute

// NotifyTimeout bounds a fire-and-forget order notification.
var NotifyTimeout = 15 * time.Second

// SheetSource downloads a published spreadsheet as CSV text.
type SheetSource interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Bot reads channel history and posts messages.
type Bot interface {
	GetUpdates(ctx context.Context, token string) ([]telegram.Update, error)
	SendMessage(ctx context.Context, token, chatID, text string) error
}

// Assistant produces recommendations, stories and speech.
type Assistant interface {
	Recommend(ctx context.Context, age, interests string, toys []shop.Toy) ([]assistant.Recommendation, error)
	Story(ctx context.Context, toyName string) (string, error)
	Speech(ctx context.Context, text string) (assistant.Audio, error)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Shop      *store.Shop
	Sheets    SheetSource
	Bot       Bot
	Assistant Assistant
	Auth      *adminauth.Authenticator
	Sessions  *adminauth.Sessions
}

// Options tune a Service. Zero values select defaults.
type Options struct {
	Keywords    csvimport.KeywordTable // header keyword table; nil means built-in
	Location    *time.Location         // display zone for order dates; nil means time.Local
	PageSize    int                    // storefront page size
	SyncMaxWait time.Duration          // how long a sync waits for another to finish
	Now         func() time.Time
}

// Service is the shop back end: catalog and order syncs, checkout, admin
// operations, settings and the AI assistant.
type Service struct {
	shop      *store.Shop
	sheets    SheetSource
	bot       Bot
	assistant Assistant
	auth      *adminauth.Authenticator
	sessions  *adminauth.Sessions

	keywords csvimport.KeywordTable
	location *time.Location
	pageSize int
	now      func() time.Time

	limiter *SyncLimiter

	// idMu serializes id generation for manual entries and placed orders.
	idMu   sync.Mutex
	lastID int64

	notifications sync.WaitGroup
}

// NewService creates a new Service instance.
func NewService(deps Deps, opts Options) (*Service, error) {
	var errs []error
	if deps.Shop == nil {
		errs = append(errs, errors.New("shop state is required"))
	}
	if deps.Sheets == nil {
		errs = append(errs, errors.New("sheet source is required"))
	}
	if deps.Bot == nil {
		errs = append(errs, errors.New("bot client is required"))
	}
	if deps.Assistant == nil {
		errs = append(errs, errors.New("assistant client is required"))
	}
	if deps.Auth == nil || deps.Sessions == nil {
		errs = append(errs, errors.New("admin authenticator and sessions are required"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("new service: %w", errors.Join(errs...))
	}

	if opts.Keywords == nil {
		opts.Keywords = csvimport.DefaultKeywordTable()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.PageSize <= 0 {
		opts.PageSize = shop.DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		shop:      deps.Shop,
		sheets:    deps.Sheets,
		bot:       deps.Bot,
		assistant: deps.Assistant,
		auth:      deps.Auth,
		sessions:  deps.Sessions,
		keywords:  opts.Keywords,
		location:  opts.Location,
		pageSize:  opts.PageSize,
		now:       opts.Now,
		limiter:   NewSyncLimiter(opts.SyncMaxWait),
	}, nil
}

// SyncStatus reports which sync, if any, is running.
func (s *Service) SyncStatus() SyncLimiterStatus {
	return s.limiter.Status()
}

// nextID returns a unix-millisecond id greater than any returned before.
func (s *Service) nextID() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Shutdown waits for a running sync and pending notifications.
func (s *Service) Shutdown(ctx context.Context) error {
	if err := s.limiter.WaitForDrain(ctx); err != nil {
		return fmt.Errorf("wait for sync: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.notifications.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for notifications: %w", ctx.Err())
	}
}
