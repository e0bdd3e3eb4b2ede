package outcome

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/steprunner/logger"
	"gorm.io/gorm"
)

// SQLStore implements the Store interface using GORM (MySQL or SQLite).
type SQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewSQLStore creates a new GORM-backed outcome store.
func NewSQLStore(db *gorm.DB, log logger.Logger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: log,
	}
}

// Migrate creates or updates the outcome tables.
func (s *SQLStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(Models()...)
}

// Save persists a finished outcome and its step tree in one transaction.
func (s *SQLStore) Save(ctx context.Context, o *TestOutcome) error {
	if o.Title == "" {
		return ErrInvalidTitle
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	row := toRow(o)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := row.Steps
		row.Steps = nil
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if len(steps) == 0 {
			return nil
		}
		return tx.Create(&steps).Error
	})
	if err != nil {
		s.logger.Error(ctx, "failed to save outcome", map[string]interface{}{
			"error":      err.Error(),
			"outcome_id": o.ID.String(),
			"title":      o.Title,
		})
		return err
	}

	s.logger.Info(ctx, "outcome saved", map[string]interface{}{
		"outcome_id": o.ID.String(),
		"title":      o.Title,
		"result":     row.Result,
		"steps":      row.StepCount,
	})

	return nil
}

// GetByID retrieves an outcome with its step tree.
func (s *SQLStore) GetByID(ctx context.Context, id uuid.UUID) (*TestOutcome, error) {
	var row outcomeRow
	err := s.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutcomeNotFound
		}
		s.logger.Error(ctx, "failed to get outcome by ID", map[string]interface{}{
			"error":      err.Error(),
			"outcome_id": id.String(),
		})
		return nil, err
	}

	return fromRow(&row), nil
}

// List retrieves a paginated list of outcome summaries, most recent first.
func (s *SQLStore) List(ctx context.Context, limit, offset int) ([]*Summary, error) {
	var rows []*outcomeRow
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list outcomes", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	summaries := make([]*Summary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, &Summary{
			ID:         r.ID,
			Title:      r.Title,
			Result:     r.Result,
			StartedAt:  r.StartedAt,
			DurationMS: r.DurationMS,
			StepCount:  r.StepCount,
		})
	}

	return summaries, nil
}

// Count returns the number of stored outcomes.
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&outcomeRow{}).Count(&n).Error; err != nil {
		s.logger.Error(ctx, "failed to count outcomes", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, err
	}
	return n, nil
}
