package tenant

import (
	"container/list"
	"context"
	"fmt"
	"regexp"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"peopledesk/pkg/apperr"
)

// DefaultMaxEntries bounds the resolver cache when Options leaves it unset.
const DefaultMaxEntries = 128

// OpenFunc produces a dialector for one tenant's isolated database. The
// production implementation lives in pkg/database; tests inject sqlite.
type OpenFunc func(tenantID string) (gorm.Dialector, error)

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id is a well-formed tenant identifier: 1-64
// characters from [A-Za-z0-9_-]. Transport middleware rejects anything else
// before it reaches the resolver, and the resolver re-checks because the id
// is interpolated into database names.
func ValidID(id string) bool {
	return tenantIDPattern.MatchString(id)
}

// Options configures a Resolver.
type Options struct {
	// Open produces per-tenant dialectors. Required.
	Open OpenFunc
	// MaxEntries bounds the handle cache; least recently used tenants are
	// evicted and their connections closed. 0 selects DefaultMaxEntries.
	MaxEntries int
	// GormConfig applies to every tenant connection. Optional.
	GormConfig *gorm.Config
	Logger     *zap.Logger
}

type cacheEntry struct {
	id   string
	cols *Collections
}

// Resolver maps tenant ids to cached collection handles. It is owned by the
// composition root and passed to services explicitly; there is no package
// global. Safe for concurrent use.
type Resolver struct {
	mu      sync.Mutex
	open    OpenFunc
	gormCfg *gorm.Config
	log     *zap.Logger
	max     int
	entries map[string]*list.Element
	lru     *list.List // front = most recently used
}

// NewResolver builds a resolver from opts. The first resolution of a tenant
// opens its database, migrates the tenant schema and caches the handles;
// later resolutions reuse them.
func NewResolver(opts Options) *Resolver {
	max := opts.MaxEntries
	if max <= 0 {
		max = DefaultMaxEntries
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gormCfg := opts.GormConfig
	if gormCfg == nil {
		gormCfg = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}
	return &Resolver{
		open:    opts.Open,
		gormCfg: gormCfg,
		log:     log,
		max:     max,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Collections resolves the collection handles for tenantID. Repeated calls
// with the same id observe the same underlying storage. Returns
// apperr.ErrNotConnected when no opener is configured and
// apperr.ErrValidation for a malformed id.
func (r *Resolver) Collections(ctx context.Context, tenantID string) (*Collections, error) {
	if r == nil || r.open == nil {
		return nil, fmt.Errorf("%w: tenant resolver has no database opener", apperr.ErrNotConnected)
	}
	if !ValidID(tenantID) {
		return nil, fmt.Errorf("%w: malformed tenant id %q", apperr.ErrValidation, tenantID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.entries[tenantID]; ok {
		r.lru.MoveToFront(el)
		return el.Value.(*cacheEntry).cols, nil
	}

	cols, err := r.openTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	r.entries[tenantID] = r.lru.PushFront(&cacheEntry{id: tenantID, cols: cols})
	r.evictLocked()
	return cols, nil
}

// openTenant materializes the tenant database: open the connection and make
// sure the tenant schema exists. Called with the resolver lock held so two
// concurrent first resolutions of the same tenant cannot race.
func (r *Resolver) openTenant(ctx context.Context, tenantID string) (*Collections, error) {
	dialector, err := r.open(tenantID)
	if err != nil {
		return nil, fmt.Errorf("open tenant %s: %w", tenantID, err)
	}

	db, err := gorm.Open(dialector, r.gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect tenant %s: %w", tenantID, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate tenant %s: %w", tenantID, err)
	}

	r.log.Info("tenant database resolved", zap.String("tenant_id", tenantID))
	return newCollections(tenantID, db), nil
}

func (r *Resolver) evictLocked() {
	for r.lru.Len() > r.max {
		el := r.lru.Back()
		if el == nil {
			return
		}
		entry := r.lru.Remove(el).(*cacheEntry)
		delete(r.entries, entry.id)
		closeDB(entry.cols.db)
		r.log.Info("tenant handle evicted", zap.String("tenant_id", entry.id))
	}
}

// Len returns the number of cached tenant handles.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Len()
}

// Close releases every cached tenant connection.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, el := range r.entries {
		closeDB(el.Value.(*cacheEntry).cols.db)
		delete(r.entries, id)
	}
	r.lru.Init()
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}
