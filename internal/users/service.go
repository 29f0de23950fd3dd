package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/agbru/labwork/internal/logging"
)

// ActiveUsersCacheKey is the cache key of the active-user listing.
const ActiveUsersCacheKey = "ActiveUsersCache"

// DefaultCacheTTL is the default absolute expiration of cached listings.
const DefaultCacheTTL = 5 * time.Minute

// CacheObserver receives one event per cached lookup.
type CacheObserver interface {
	ObserveCacheLookup(hit bool)
}

type noopCacheObserver struct{}

func (noopCacheObserver) ObserveCacheLookup(bool) {}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCacheTTL sets the expiration of cached listings.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l logging.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCacheObserver attaches a CacheObserver.
func WithCacheObserver(o CacheObserver) ServiceOption {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// Service implements the user queries on top of a Store and a Cache.
type Service struct {
	store    *Store
	cache    Cache
	ttl      time.Duration
	logger   logging.Logger
	observer CacheObserver
}

// NewService returns a Service. A nil cache selects a MemoryCache.
func NewService(store *Store, cache Cache, opts ...ServiceOption) *Service {
	if cache == nil {
		cache = NewMemoryCache(10 * time.Minute)
	}
	s := &Service{
		store:    store,
		cache:    cache,
		ttl:      DefaultCacheTTL,
		logger:   logging.Nop(),
		observer: noopCacheObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUsers inserts users and their orders in a single transaction. On
// success the IDs of users and orders are filled in place and the cached
// active-user listing is invalidated. On any failure nothing is persisted.
func (s *Service) AddUsers(ctx context.Context, users []User) error {
	err := s.store.withTx(ctx, "add users", func(tx *sql.Tx) error {
		for i := range users {
			u := &users[i]
			if err := s.store.insertUser(ctx, tx, u); err != nil {
				return err
			}
			for j := range u.Orders {
				u.Orders[j].UserID = u.ID
				if err := s.store.insertOrder(ctx, tx, &u.Orders[j]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("add users rolled back", err, logging.Int("users", len(users)))
		return err
	}
	s.logger.Debug("users added", logging.Int("users", len(users)))
	s.invalidate(ctx)
	return nil
}

// AddOrders inserts orders for existing users in a single transaction.
func (s *Service) AddOrders(ctx context.Context, orders []Order) error {
	err := s.store.withTx(ctx, "add orders", func(tx *sql.Tx) error {
		for i := range orders {
			if err := s.store.insertOrder(ctx, tx, &orders[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("add orders rolled back", err, logging.Int("orders", len(orders)))
		return err
	}
	s.logger.Debug("orders added", logging.Int("orders", len(orders)))
	return nil
}

// ActiveUsers returns the active users ordered by ID, straight from the
// store. Orders are not loaded.
func (s *Service) ActiveUsers(ctx context.Context) ([]User, error) {
	return s.store.activeUsers(ctx)
}

// UsersWithOrders returns the name and order count of every user having at
// least one order, ordered by user ID.
func (s *Service) UsersWithOrders(ctx context.Context) ([]UserWithOrderInfo, error) {
	return s.store.usersWithOrders(ctx)
}

// CachedActiveUsers returns the active users, served from the cache when a
// fresh entry exists under ActiveUsersCacheKey. A cache failure falls back to
// the store.
func (s *Service) CachedActiveUsers(ctx context.Context) ([]User, error) {
	list, ok, err := s.cache.Get(ctx, ActiveUsersCacheKey)
	if err != nil {
		s.logger.Error("cache read failed", err, logging.String("key", ActiveUsersCacheKey))
	}
	s.observer.ObserveCacheLookup(ok)
	s.logger.Debug("active users lookup", logging.Bool("cache_hit", ok))
	if ok {
		return list, nil
	}

	list, err = s.store.activeUsers(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, ActiveUsersCacheKey, list, s.ttl); err != nil {
		s.logger.Error("cache write failed", err, logging.String("key", ActiveUsersCacheKey))
	}
	return list, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, ActiveUsersCacheKey); err != nil {
		s.logger.Error("cache invalidation failed", err, logging.String("key", ActiveUsersCacheKey))
	}
}
