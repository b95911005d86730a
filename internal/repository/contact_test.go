package repository

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

func newTestRepo(t *testing.T) (*contactRepository, *DB) {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, "", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(slog.Default()) })
	require.NoError(t, db.Migrate(ctx))

	repo := NewContactRepository(db, nil).(*contactRepository)
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo, db
}

func sampleContact() entity.StructuredContact {
	c := entity.NewStructuredContact()
	c.Name = "John Smith"
	c.Company = "Acme"
	c.Phone = "14155550100"
	c.Email = "john@acme.io"
	return c
}

func TestCreateAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	score := 88
	c := sampleContact()
	c.ConfidenceScore = &score
	created, err := repo.Create(ctx, &entity.ScanRecord{
		Method: string(constants.MethodAI), SourceType: constants.IMAGE, RawText: "JOHN SMITH", RuleVersion: "2024.2", Contact: c,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, string(constants.ScanStatusPendingReview), created.Status)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "JOHN SMITH", got.RawText)
	assert.Equal(t, "2024.2", got.RuleVersion)
	assert.Equal(t, c, got.Contact)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestHeuristicContactKeepsNilConfidence(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entity.ScanRecord{Method: string(constants.MethodHeuristic), SourceType: constants.TXT, Contact: sampleContact()})
	require.NoError(t, err)
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Contact.ConfidenceScore)
	assert.Equal(t, "-", got.Contact.PhoneSecondary)
}

func TestGetMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListNewestFirstWithFilter(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		rec, err := repo.Create(ctx, &entity.ScanRecord{Method: "HEURISTIC", SourceType: "TXT", Contact: sampleContact()})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	_, err := repo.UpdateContact(ctx, ids[0], sampleContact())
	require.NoError(t, err)

	all, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	pending, err := repo.List(ctx, ListFilter{Status: constants.ScanStatusPendingReview})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	page, err := repo.List(ctx, ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)
}

func TestUpdateContactConfirms(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entity.ScanRecord{Method: "AI", SourceType: "IMAGE", Contact: sampleContact()})
	require.NoError(t, err)

	edited := sampleContact()
	edited.JobTitle = "President"
	edited.EmailSecondary = "sales@acme.io"
	updated, err := repo.UpdateContact(ctx, created.ID, edited)
	require.NoError(t, err)
	assert.Equal(t, string(constants.ScanStatusConfirmed), updated.Status)
	assert.Equal(t, "President", updated.Contact.JobTitle)
	assert.Equal(t, "sales@acme.io", updated.Contact.EmailSecondary)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = repo.UpdateContact(ctx, uuid.New(), edited)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRebindAndHealth(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	assert.Equal(t, "SELECT $1, $2", pg.rebind("SELECT ?, ?"))
	lite := &DB{Dialect: DialectSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))

	_, db := newTestRepo(t)
	assert.NoError(t, db.HealthCheck(context.Background(), time.Second, slog.Default()))
	assert.NoError(t, db.Migrate(context.Background()), "migrations are idempotent")
}
