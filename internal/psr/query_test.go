package psr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procureflow/procureflow/internal/db/models"
)

func psrIDs(records []models.PSR) []string {
	ids := make([]string, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].PSRID)
	}

	return ids
}

func TestListScoping(t *testing.T) {
	db := setupTestDB(t)
	actors := seedActors(t, db)
	engine := NewEngine(db)

	mineA := createDraft(t, engine, actors.requestorA, "Laptops", 45000)
	mineA2 := createDraft(t, engine, actors.requestorA, "Monitors", 500)
	other := createDraft(t, engine, actors.requestorB, "Chairs", 2500000)

	t.Run("requestor only sees own records", func(t *testing.T) {
		records, err := engine.List(actors.requestorA, Filter{})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{mineA.PSRID, mineA2.PSRID}, psrIDs(records))
	})

	t.Run("requestor cannot widen the scope via filter", func(t *testing.T) {
		records, err := engine.List(actors.requestorA, Filter{RequestorID: actors.requestorB.ID})
		require.NoError(t, err)

		for _, record := range records {
			assert.Equal(t, actors.requestorA.ID, record.RequestorID)
		}
	})

	t.Run("procurement sees everything", func(t *testing.T) {
		records, err := engine.List(actors.procurement, Filter{})
		require.NoError(t, err)

		assert.Len(t, records, 3)
	})

	t.Run("procurement can filter by owner", func(t *testing.T) {
		records, err := engine.List(actors.procurement, Filter{RequestorID: actors.requestorB.ID})
		require.NoError(t, err)

		assert.Equal(t, []string{other.PSRID}, psrIDs(records))
	})

	t.Run("status filter", func(t *testing.T) {
		_, err := engine.Submit(actors.requestorA, mineA.PSRID)
		require.NoError(t, err)

		records, err := engine.List(actors.admin, Filter{Status: models.StatusPending})
		require.NoError(t, err)

		assert.Equal(t, []string{mineA.PSRID}, psrIDs(records))
	})
}

func TestListMine(t *testing.T) {
	db := setupTestDB(t)
	actors := seedActors(t, db)
	engine := NewEngine(db)

	first := createDraft(t, engine, actors.requestorA, "Laptops", 45000)
	second := createDraft(t, engine, actors.requestorA, "Monitors", 500)
	createDraft(t, engine, actors.requestorB, "Chairs", 2500000)

	_, err := engine.Submit(actors.requestorA, first.PSRID)
	require.NoError(t, err)

	records, err := engine.ListMine(actors.requestorA, "")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	drafts, err := engine.ListMine(actors.requestorA, models.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, []string{second.PSRID}, psrIDs(drafts))
}

func TestListPending(t *testing.T) {
	db := setupTestDB(t)
	actors := seedActors(t, db)
	engine := NewEngine(db)

	submit := func(title string, priority models.Priority) string {
		record, err := engine.Create(actors.requestorA, CreateInput{
			Title:      title,
			Department: "IT",
			Priority:   priority,
		})
		require.NoError(t, err)

		_, err = engine.Submit(actors.requestorA, record.PSRID)
		require.NoError(t, err)

		return record.PSRID
	}

	lowID := submit("Cables", models.PriorityLow)
	highFirst := submit("Firewall", models.PriorityHigh)
	mediumID := submit("Switches", models.PriorityMedium)
	highSecond := submit("Backups", models.PriorityHigh)

	t.Run("requestor is denied", func(t *testing.T) {
		_, err := engine.ListPending(actors.requestorA)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("queue orders by priority then age", func(t *testing.T) {
		records, err := engine.ListPending(actors.procurement)
		require.NoError(t, err)

		assert.Equal(t, []string{highFirst, highSecond, mediumID, lowID}, psrIDs(records))
	})
}

func TestListApproved(t *testing.T) {
	db := setupTestDB(t)
	actors := seedActors(t, db)
	engine := NewEngine(db)

	approve := func(actor *models.User, title string) string {
		record := createDraft(t, engine, actor, title, 45000)

		_, err := engine.Submit(actor, record.PSRID)
		require.NoError(t, err)
		_, err = engine.Approve(actors.procurement, record.PSRID)
		require.NoError(t, err)

		return record.PSRID
	}

	firstApproved := approve(actors.requestorA, "Laptops")
	secondApproved := approve(actors.requestorB, "Chairs")
	createDraft(t, engine, actors.requestorA, "Still a draft", 500)

	t.Run("requestor sees only own approvals", func(t *testing.T) {
		records, err := engine.ListApproved(actors.requestorA)
		require.NoError(t, err)

		assert.Equal(t, []string{firstApproved}, psrIDs(records))
	})

	t.Run("reviewer sees all, newest approval first", func(t *testing.T) {
		records, err := engine.ListApproved(actors.admin)
		require.NoError(t, err)

		assert.Equal(t, []string{secondApproved, firstApproved}, psrIDs(records))
	})
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	actors := seedActors(t, db)
	engine := NewEngine(db)

	record := createDraft(t, engine, actors.requestorA, "Laptops", 45000)

	t.Run("owner reads own record", func(t *testing.T) {
		got, err := engine.Get(actors.requestorA, record.PSRID)
		require.NoError(t, err)
		assert.Equal(t, record.PSRID, got.PSRID)
	})

	t.Run("other requestor is denied", func(t *testing.T) {
		_, err := engine.Get(actors.requestorB, record.PSRID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("reviewer reads any record", func(t *testing.T) {
		got, err := engine.Get(actors.procurement, record.PSRID)
		require.NoError(t, err)
		assert.Equal(t, record.PSRID, got.PSRID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := engine.Get(actors.requestorA, "REQ-999")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStatistics(t *testing.T) {
	db := setupTestDB(t)
	actors := seedActors(t, db)
	engine := NewEngine(db)

	draft := createDraft(t, engine, actors.requestorA, "Draft one", 500)
	_ = draft

	pending := createDraft(t, engine, actors.requestorA, "Pending one", 500)
	_, err := engine.Submit(actors.requestorA, pending.PSRID)
	require.NoError(t, err)

	approved := createDraft(t, engine, actors.requestorB, "Approved one", 500)
	_, err = engine.Submit(actors.requestorB, approved.PSRID)
	require.NoError(t, err)
	_, err = engine.Approve(actors.procurement, approved.PSRID)
	require.NoError(t, err)

	t.Run("reviewer sees global counts", func(t *testing.T) {
		stats, err := engine.Statistics(actors.procurement)
		require.NoError(t, err)

		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(1), stats.Draft)
		assert.Equal(t, int64(1), stats.Pending)
		assert.Equal(t, int64(1), stats.Approved)
		assert.Zero(t, stats.Rejected)
		assert.Zero(t, stats.InProgress)
	})

	t.Run("requestor counts are scoped to own records", func(t *testing.T) {
		stats, err := engine.Statistics(actors.requestorA)
		require.NoError(t, err)

		assert.Equal(t, int64(2), stats.Total)
		assert.Equal(t, int64(1), stats.Draft)
		assert.Equal(t, int64(1), stats.Pending)
		assert.Zero(t, stats.Approved)
	})
}
