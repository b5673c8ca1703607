package company

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"peopledesk/internal/model"
	"peopledesk/internal/softdelete"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/apperr"
)

// CountService keeps the cached user_count on central company records close
// to the true number of active employees in each tenant database. Increment
// and Decrement are the cheap hot-path updates; Sync and SyncAll are the
// authoritative reconciliation path that heals drift from races or crashes.
type CountService struct {
	central *gorm.DB
	tenants *tenant.Resolver
	log     *zap.Logger
}

// NewCountService wires the service to the central database and the tenant
// resolver.
func NewCountService(central *gorm.DB, tenants *tenant.Resolver, log *zap.Logger) *CountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CountService{central: central, tenants: tenants, log: log}
}

// SyncReport tallies the outcome of a SyncAll run.
type SyncReport struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// Increment adds one to the company's cached user count and stamps the update
// time. Returns the new count, or apperr.ErrNotFound when no company matches.
func (s *CountService) Increment(ctx context.Context, companyID string) (int, error) {
	return s.adjust(ctx, companyID, 1)
}

// Decrement subtracts one from the company's cached user count. The decrement
// itself is unconditional; a follow-up corrective write clamps the stored
// value at zero if it went negative.
func (s *CountService) Decrement(ctx context.Context, companyID string) (int, error) {
	count, err := s.adjust(ctx, companyID, -1)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		err = s.central.WithContext(ctx).Model(&model.Company{}).
			Where("id = ? AND user_count < 0", companyID).
			Update("user_count", 0).Error
		if err != nil {
			return 0, err
		}
		count = 0
	}
	return count, nil
}

func (s *CountService) adjust(ctx context.Context, companyID string, delta int) (int, error) {
	if s.central == nil {
		return 0, fmt.Errorf("%w: central database not initialized", apperr.ErrNotConnected)
	}

	res := s.central.WithContext(ctx).Model(&model.Company{}).
		Where("id = ?", companyID).
		Updates(map[string]any{
			"user_count":              gorm.Expr("user_count + ?", delta),
			"user_count_last_updated": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: company %s", apperr.ErrNotFound, companyID)
	}

	return s.currentCount(ctx, companyID)
}

// Sync recomputes the cached count from the tenant database: active employees
// (status Active) that are not soft-deleted. The cached value is overwritten
// unconditionally.
func (s *CountService) Sync(ctx context.Context, companyID string) (int, error) {
	if s.central == nil {
		return 0, fmt.Errorf("%w: central database not initialized", apperr.ErrNotConnected)
	}

	cols, err := s.tenants.Collections(ctx, companyID)
	if err != nil {
		return 0, err
	}

	count, err := cols.Employees.CountActive(ctx, softdelete.Filter{"status": model.StatusActive})
	if err != nil {
		return 0, fmt.Errorf("count active employees for %s: %w", companyID, err)
	}

	res := s.central.WithContext(ctx).Model(&model.Company{}).
		Where("id = ?", companyID).
		Updates(map[string]any{
			"user_count":              count,
			"user_count_last_updated": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: company %s", apperr.ErrNotFound, companyID)
	}

	s.log.Info("user count synced",
		zap.String("company_id", companyID),
		zap.Int64("user_count", count))
	return int(count), nil
}

// SyncAll reconciles every company record. A failure for one company is
// logged and counted but does not stop the others.
func (s *CountService) SyncAll(ctx context.Context) (SyncReport, error) {
	var report SyncReport
	if s.central == nil {
		return report, fmt.Errorf("%w: central database not initialized", apperr.ErrNotConnected)
	}

	var companies []model.Company
	if err := s.central.WithContext(ctx).Find(&companies).Error; err != nil {
		return report, err
	}

	for _, c := range companies {
		if _, err := s.Sync(ctx, c.ID); err != nil {
			report.Failed++
			s.log.Error("user count sync failed",
				zap.String("company_id", c.ID),
				zap.Error(err))
			continue
		}
		report.Synced++
	}

	return report, nil
}

func (s *CountService) currentCount(ctx context.Context, companyID string) (int, error) {
	var c model.Company
	err := s.central.WithContext(ctx).Select("user_count").
		Where("id = ?", companyID).
		First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("%w: company %s", apperr.ErrNotFound, companyID)
		}
		return 0, err
	}
	return c.UserCount, nil
}
