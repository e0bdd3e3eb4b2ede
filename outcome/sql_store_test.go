package outcome

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/steprunner/database"
	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLStore {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, Models()...)
	return NewSQLStore(db, logger.NewTestLogger())
}

func sampleOutcome(title string, startedAt time.Time) *TestOutcome {
	return &TestOutcome{
		Title:     title,
		StartedAt: startedAt,
		Duration:  1500 * time.Millisecond,
		Records: []*StepRecord{
			{
				ID:          uuid.New(),
				Description: "log in",
				Group:       true,
				Result:      ResultSuccess,
				Children: []*StepRecord{
					{ID: uuid.New(), Description: "open login page", Result: ResultSuccess, Duration: 200 * time.Millisecond},
					{ID: uuid.New(), Description: "submit credentials", Result: ResultSuccess},
				},
			},
			{
				ID:           uuid.New(),
				Description:  "click submit",
				Result:       ResultFailure,
				ErrorMessage: "timeout",
				Cause:        errors.New("timeout"),
				EvidenceRef:  "screenshots/a.png",
			},
			{ID: uuid.New(), Description: "view result", Result: ResultSkipped},
		},
	}
}

func TestSQLStore_SaveAndGetByID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	o := sampleOutcome("checkout", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, store.Save(ctx, o))
	assert.NotEqual(t, uuid.Nil, o.ID)

	got, err := store.GetByID(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, "checkout", got.Title)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, ResultFailure, got.Result())
	require.Len(t, got.Records, 3)
	require.Len(t, got.Records[0].Children, 2)
	assert.True(t, got.Records[0].Group)
	assert.Equal(t, "open login page", got.Records[0].Children[0].Description)
	assert.Equal(t, 200*time.Millisecond, got.Records[0].Children[0].Duration)
	assert.Equal(t, "timeout", got.Records[1].ErrorMessage)
	assert.Equal(t, "screenshots/a.png", got.Records[1].EvidenceRef)
	assert.Equal(t, ResultSkipped, got.Records[2].Result)
}

func TestSQLStore_GetByIDNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOutcomeNotFound)
}

func TestSQLStore_SaveRequiresTitle(t *testing.T) {
	store := setupTestStore(t)

	err := store.Save(context.Background(), &TestOutcome{})
	assert.ErrorIs(t, err, ErrInvalidTitle)
}

func TestSQLStore_List(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, store.Save(ctx, sampleOutcome(title, base.Add(time.Duration(i)*time.Minute))))
	}

	summaries, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "third", summaries[0].Title)
	assert.Equal(t, "second", summaries[1].Title)
	assert.Equal(t, ResultFailure, summaries[0].Result)
	assert.Equal(t, 4, summaries[0].StepCount)

	summaries, err = store.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "first", summaries[0].Title)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSQLStore_KeepsOwnResultOfStepWithInnerSteps(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	o := &TestOutcome{
		Title:     "outer fails",
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Records: []*StepRecord{
			{
				ID:           uuid.New(),
				Description:  "outer",
				Result:       ResultFailure,
				Own:          ResultFailure,
				ErrorMessage: "outer broke",
				Children: []*StepRecord{
					{ID: uuid.New(), Description: "inner", Result: ResultSuccess, Own: ResultSuccess},
				},
			},
		},
	}
	require.NoError(t, store.Save(ctx, o))

	got, err := store.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FirstFailure())
	assert.Equal(t, "outer", got.FirstFailure().Description)
	assert.Equal(t, map[Result]int{ResultSuccess: 1, ResultFailure: 1}, got.Counts())

	summaries, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].StepCount)
}

func TestSQLStore_OnVersionedSchema(t *testing.T) {
	cfg := database.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "outcomes.db")}
	require.NoError(t, database.MigrateUp(cfg))

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store := NewSQLStore(db, logger.NewTestLogger())
	ctx := context.Background()
	o := sampleOutcome("versioned", time.Now().UTC().Truncate(time.Second))
	o.Records[1].Own = ResultFailure
	require.NoError(t, store.Save(ctx, o))

	got, err := store.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, ResultFailure, got.Result())
	require.NotNil(t, got.FirstFailure())
	assert.Equal(t, "click submit", got.FirstFailure().Description)
	assert.Equal(t, "screenshots/a.png", got.FirstFailure().EvidenceRef)
}
