package outcome

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrOutcomeNotFound is returned when a stored outcome is not found.
	ErrOutcomeNotFound = errors.New("outcome not found")

	// ErrInvalidTitle is returned when an outcome has no title.
	ErrInvalidTitle = errors.New("title is required")
)

// outcomeRow is the stored form of a TestOutcome.
type outcomeRow struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title      string    `gorm:"type:varchar(255);not null;index:idx_title"`
	Result     Result    `gorm:"type:varchar(20);not null;index:idx_result"`
	StartedAt  time.Time `gorm:"index:idx_started_at"`
	DurationMS int64     `gorm:"not null"`
	StepCount  int       `gorm:"not null"`
	Steps      []stepRow `gorm:"foreignKey:OutcomeID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

// TableName specifies the table name for GORM.
func (outcomeRow) TableName() string {
	return "test_outcomes"
}

// stepRow is the stored form of a StepRecord. The tree is flattened in depth-first
// order; ParentID links a record to its enclosing group.
type stepRow struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey"`
	OutcomeID    uuid.UUID  `gorm:"type:char(36);not null;index:idx_outcome_id"`
	ParentID     *uuid.UUID `gorm:"type:char(36)"`
	Position     int        `gorm:"not null"`
	Description  string     `gorm:"type:text;not null"`
	IsGroup      bool       `gorm:"not null"`
	Result       Result     `gorm:"type:varchar(20);not null"`
	OwnResult    Result     `gorm:"type:varchar(20)"`
	StartedAt    time.Time
	DurationMS   int64  `gorm:"not null"`
	ErrorMessage string `gorm:"type:text"`
	EvidenceRef  string `gorm:"type:varchar(512)"`
}

// TableName specifies the table name for GORM.
func (stepRow) TableName() string {
	return "test_outcome_steps"
}

// BeforeCreate hook to generate UUID before creating a new step row.
func (s *stepRow) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Models returns the GORM models backing the SQL store, for migrations.
func Models() []interface{} {
	return []interface{}{&outcomeRow{}, &stepRow{}}
}

func toRow(o *TestOutcome) *outcomeRow {
	row := &outcomeRow{
		ID:         o.ID,
		Title:      o.Title,
		Result:     o.Result(),
		StartedAt:  o.StartedAt,
		DurationMS: o.Duration.Milliseconds(),
		StepCount:  len(o.Steps()),
	}

	position := 0
	var flatten func(records []*StepRecord, parent *uuid.UUID)
	flatten = func(records []*StepRecord, parent *uuid.UUID) {
		for _, r := range records {
			id := r.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			row.Steps = append(row.Steps, stepRow{
				ID:           id,
				OutcomeID:    o.ID,
				ParentID:     parent,
				Position:     position,
				Description:  r.Description,
				IsGroup:      r.Group,
				Result:       r.Result,
				OwnResult:    r.Own,
				StartedAt:    r.StartedAt,
				DurationMS:   r.Duration.Milliseconds(),
				ErrorMessage: r.ErrorMessage,
				EvidenceRef:  r.EvidenceRef,
			})
			position++
			flatten(r.Children, &id)
		}
	}
	flatten(o.Records, nil)

	return row
}

func fromRow(row *outcomeRow) *TestOutcome {
	o := &TestOutcome{
		ID:        row.ID,
		Title:     row.Title,
		StartedAt: row.StartedAt,
		Duration:  time.Duration(row.DurationMS) * time.Millisecond,
	}

	// Rows are ordered by position, so a parent always precedes its children.
	byID := make(map[uuid.UUID]*StepRecord, len(row.Steps))
	for _, s := range row.Steps {
		rec := &StepRecord{
			ID:           s.ID,
			Description:  s.Description,
			Group:        s.IsGroup,
			Result:       s.Result,
			Own:          s.OwnResult,
			StartedAt:    s.StartedAt,
			Duration:     time.Duration(s.DurationMS) * time.Millisecond,
			ErrorMessage: s.ErrorMessage,
			EvidenceRef:  s.EvidenceRef,
		}
		byID[s.ID] = rec
		if s.ParentID != nil {
			if parent, ok := byID[*s.ParentID]; ok {
				parent.Children = append(parent.Children, rec)
				continue
			}
		}
		o.Records = append(o.Records, rec)
	}

	return o
}
