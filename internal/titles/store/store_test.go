package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landgate/internal/ledger"
	"landgate/internal/titles/models"
	"landgate/pkg/testutil"
)

func newVault(t *testing.T) *ledger.Memory {
	t.Helper()
	return ledger.NewMemory(ledger.Party{Organisation: "HMLR", Name: "O=HMLR,L=Plymouth,C=GB"})
}

func appendTitle(t *testing.T, vault *ledger.Memory, titleNumber, status string, at *time.Time) uint64 {
	t.Helper()
	idx, err := vault.Append(ledger.EntityLandTitle, models.TitleRecord{
		TitleNumber: titleNumber,
		Status:      status,
	}, at)
	require.NoError(t, err)
	return idx
}

func TestFetchOrdersByDescendingStorageIndex(t *testing.T) {
	vault := newVault(t)
	now := time.Now().UTC()
	appendTitle(t, vault, "T-ONE", "issued", &now)
	appendTitle(t, vault, "T-ONE", "assign_buyer_conveyancer", &now)
	appendTitle(t, vault, "T-ONE", "transferred", &now)

	st := New(vault)
	records, err := Fetch[models.TitleRecord](context.Background(), st, ledger.EntityLandTitle, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "transferred", records[0].Record.Status)
	assert.Equal(t, "assign_buyer_conveyancer", records[1].Record.Status)
	assert.Equal(t, "issued", records[2].Record.Status)
	assert.Equal(t, "transferred", First(records).Record.Status)
}

func TestFetchByTitleFiltersClientSide(t *testing.T) {
	vault := newVault(t)
	now := time.Now().UTC()
	appendTitle(t, vault, "T-ONE", "issued", &now)
	appendTitle(t, vault, "T-TWO", "issued", &now)
	appendTitle(t, vault, "T-ONE", "transferred", nil)

	st := New(vault)
	records, err := FetchByTitle[models.TitleRecord](context.Background(), st, ledger.EntityLandTitle, "T-ONE")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, v := range records {
		assert.Equal(t, "T-ONE", v.Record.TitleNumber)
	}
	// Recorded instants survive the round trip, including their absence.
	assert.Nil(t, records[0].RecordedAt)
	require.NotNil(t, records[1].RecordedAt)
}

func TestFetchSkipsConsumedVersions(t *testing.T) {
	vault := newVault(t)
	now := time.Now().UTC()
	first := appendTitle(t, vault, "T-ONE", "issued", &now)
	appendTitle(t, vault, "T-ONE", "transferred", &now)
	vault.Consume(first)

	st := New(vault)
	records, err := Fetch[models.TitleRecord](context.Background(), st, ledger.EntityLandTitle, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "transferred", records[0].Record.Status)
}

func TestGroupByTitle(t *testing.T) {
	now := time.Now().UTC()
	records := []models.Versioned[models.TitleRecord]{
		{Record: models.TitleRecord{TitleNumber: "T-ONE", Status: "transferred"}, RecordedAt: &now},
		{Record: models.TitleRecord{TitleNumber: "T-TWO", Status: "issued"}, RecordedAt: &now},
		{Record: models.TitleRecord{TitleNumber: "T-ONE", Status: "issued"}, RecordedAt: &now},
	}

	testutil.Given(t, "records for two titles in storage order", func(t *testing.T) {
		testutil.When(t, "they are grouped by title number", func(t *testing.T) {
			groups := GroupByTitle(records)

			testutil.Then(t, "each group preserves input order", func(t *testing.T) {
				require.Len(t, groups, 2)
				require.Len(t, groups["T-ONE"], 2)
				assert.Equal(t, "transferred", groups["T-ONE"][0].Record.Status)
				assert.Equal(t, "issued", groups["T-ONE"][1].Record.Status)
				require.Len(t, groups["T-TWO"], 1)
			})
		})
	})
}

func TestFirstOfEmptyGroupIsNil(t *testing.T) {
	assert.Nil(t, First[models.TitleRecord](nil))
	assert.Nil(t, First([]models.Versioned[models.TitleRecord]{}))
}
