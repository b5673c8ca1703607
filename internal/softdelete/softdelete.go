package softdelete

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"peopledesk/pkg/apperr"
)

// Default column names used when Config leaves them empty.
const (
	DefaultFlagColumn      = "is_deleted"
	DefaultDeletedAtColumn = "deleted_at"
	DefaultDeletedByColumn = "deleted_by"
)

// Fields is embedded by every soft-deletable model. The flag column is NOT NULL
// with a false default, so "is_deleted = false" and "is_deleted <> true" select
// the same rows.
type Fields struct {
	IsDeleted bool       `json:"is_deleted" gorm:"column:is_deleted;not null;default:false;index"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at"`
	DeletedBy *string    `json:"deleted_by,omitempty" gorm:"column:deleted_by;type:varchar(64)"`
}

// Deleted reports whether the record is currently soft-deleted.
func (f *Fields) Deleted() bool {
	return f.IsDeleted
}

// Config carries the column names for schemas that renamed the standard soft
// delete fields. The zero value selects the defaults.
type Config struct {
	FlagColumn      string
	DeletedAtColumn string
	DeletedByColumn string
}

func (c Config) withDefaults() Config {
	if c.FlagColumn == "" {
		c.FlagColumn = DefaultFlagColumn
	}
	if c.DeletedAtColumn == "" {
		c.DeletedAtColumn = DefaultDeletedAtColumn
	}
	if c.DeletedByColumn == "" {
		c.DeletedByColumn = DefaultDeletedByColumn
	}
	return c
}

// Filter is a column -> value equality condition map, applied as a gorm map
// condition. Callers build read filters with it; the repository augments it
// with delete-visibility conditions before execution.
type Filter map[string]any

func (f Filter) clone() Filter {
	out := make(Filter, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// WithActiveOnly returns a copy of filter restricted to non-deleted records.
// When the caller already constrains the flag column the filter is returned
// unchanged, so an explicit {is_deleted: true} condition keeps working.
// The augmentation is purely additive: no caller condition is removed.
func (c Config) WithActiveOnly(filter Filter) Filter {
	cfg := c.withDefaults()
	out := filter.clone()
	if _, ok := out[cfg.FlagColumn]; ok {
		return out
	}
	out[cfg.FlagColumn] = false
	return out
}

// WithDeletedOnly returns a copy of filter restricted to soft-deleted records.
// Unlike WithActiveOnly this always overrides the flag condition; it backs the
// explicit deleted-record accessors.
func (c Config) WithDeletedOnly(filter Filter) Filter {
	cfg := c.withDefaults()
	out := filter.clone()
	out[cfg.FlagColumn] = true
	return out
}

// Repository provides soft-delete-aware access to one model type in one
// database. It owns no state beyond the handle and column config, so it is
// safe to share across request handlers.
type Repository[T any] struct {
	db  *gorm.DB
	cfg Config
}

// NewRepository wraps db with soft-delete semantics for model T.
func NewRepository[T any](db *gorm.DB, cfg Config) *Repository[T] {
	return &Repository[T]{db: db, cfg: cfg.withDefaults()}
}

// DB exposes the underlying handle for queries the repository surface does not
// cover. Reads issued through it bypass delete-visibility rewriting; combine
// with ScopeActive when that matters.
func (r *Repository[T]) DB() *gorm.DB {
	return r.db
}

// ScopeActive returns a gorm scope applying filter plus the non-deleted
// condition. Intended for caller-built aggregate queries (Select/Group/Joins),
// the equivalent of prepending a match stage to a pipeline.
func (r *Repository[T]) ScopeActive(filter Filter) func(*gorm.DB) *gorm.DB {
	conds := map[string]any(r.cfg.WithActiveOnly(filter))
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(conds)
	}
}

// Create inserts a new record. New records start in the active state.
func (r *Repository[T]) Create(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindActive is the default read path: filter plus the injected non-deleted
// condition.
func (r *Repository[T]) FindActive(ctx context.Context, filter Filter) ([]T, error) {
	var out []T
	err := r.db.WithContext(ctx).
		Where(map[string]any(r.cfg.WithActiveOnly(filter))).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindOneActive returns the first active record matching filter, or
// apperr.ErrNotFound when none matches.
func (r *Repository[T]) FindOneActive(ctx context.Context, filter Filter) (*T, error) {
	var out T
	err := r.db.WithContext(ctx).
		Where(map[string]any(r.cfg.WithActiveOnly(filter))).
		First(&out).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: no active record matches filter", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

// FindDeleted returns only soft-deleted records matching filter.
func (r *Repository[T]) FindDeleted(ctx context.Context, filter Filter) ([]T, error) {
	var out []T
	err := r.db.WithContext(ctx).
		Where(map[string]any(r.cfg.WithDeletedOnly(filter))).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountActive counts non-deleted records matching filter.
func (r *Repository[T]) CountActive(ctx context.Context, filter Filter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where(map[string]any(r.cfg.WithActiveOnly(filter))).
		Count(&n).Error
	return n, err
}

// CountDeleted counts soft-deleted records matching filter.
func (r *Repository[T]) CountDeleted(ctx context.Context, filter Filter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where(map[string]any(r.cfg.WithDeletedOnly(filter))).
		Count(&n).Error
	return n, err
}

// SoftDelete marks every record matching filter as deleted, stamping the
// timestamp and acting user. Calling it on an already-deleted record is
// idempotent and re-stamps both fields. Returns the number of records updated.
func (r *Repository[T]) SoftDelete(ctx context.Context, actorID string, filter Filter) (int64, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		r.cfg.FlagColumn:      true,
		r.cfg.DeletedAtColumn: now,
	}
	if actorID != "" {
		updates[r.cfg.DeletedByColumn] = actorID
	}
	tx := r.db.WithContext(ctx).Model(new(T))
	if len(filter) == 0 {
		// An empty filter means "every record"; lift gorm's global-update guard
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	} else {
		tx = tx.Where(map[string]any(filter.clone()))
	}
	res := tx.Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Restore brings one soft-deleted record matching filter back to the active
// state, clearing timestamp and actor. apperr.ErrNotFound when no deleted
// record matches.
func (r *Repository[T]) Restore(ctx context.Context, filter Filter) error {
	n, err := r.RestoreMany(ctx, filter)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: no deleted record matches filter", apperr.ErrNotFound)
	}
	return nil
}

// RestoreMany restores every soft-deleted record matching filter and returns
// how many were restored.
func (r *Repository[T]) RestoreMany(ctx context.Context, filter Filter) (int64, error) {
	updates := map[string]any{
		r.cfg.FlagColumn:      false,
		r.cfg.DeletedAtColumn: nil,
		r.cfg.DeletedByColumn: nil,
	}
	res := r.db.WithContext(ctx).Model(new(T)).
		Where(map[string]any(r.cfg.WithDeletedOnly(filter))).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// PurgeDeleted permanently removes soft-deleted records matching filter.
// Irreversible; active records are never touched.
func (r *Repository[T]) PurgeDeleted(ctx context.Context, filter Filter) (int64, error) {
	res := r.db.WithContext(ctx).
		Where(map[string]any(r.cfg.WithDeletedOnly(filter))).
		Delete(new(T))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// HardDelete permanently removes every record matching filter, deleted or not.
// It exists for operator tooling; request paths should use SoftDelete.
func (r *Repository[T]) HardDelete(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("%w: hard delete requires a non-empty filter", apperr.ErrValidation)
	}
	res := r.db.WithContext(ctx).
		Where(map[string]any(filter.clone())).
		Delete(new(T))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
