package purchase

import (
	"sort"
	"testing"
	"time"

	"purchases-api/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner int64 = 7852511755

var baseTime = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

func rec(id int64, category, subcategory, price string, day int) domain.Purchase {
	return domain.Purchase{
		ID:          id,
		UserID:      owner,
		Category:    category,
		Subcategory: subcategory,
		Price:       decimal.RequireFromString(price),
		Timestamp:   baseTime.AddDate(0, 0, day),
	}
}

func TestReconcile_SameSnapshotIsNoop(t *testing.T) {
	snapshots := [][]domain.Purchase{
		nil,
		{rec(1, "food", "bread", "10", 0)},
		{rec(1, "food", "bread", "10", 0), rec(2, "transport", "bus", "2.50", 1), rec(3, "fun", "cinema", "12", 2)},
	}

	for _, s := range snapshots {
		changes, err := Reconcile(owner, s, s)
		require.NoError(t, err)
		assert.True(t, changes.IsEmpty(), "expected no changes for %v", s)
	}
}

func TestReconcile_Delete(t *testing.T) {
	original := []domain.Purchase{rec(1, "food", "bread", "10", 0), rec(2, "food", "milk", "3", 0)}
	edited := []domain.Purchase{rec(2, "food", "milk", "3", 0)}

	changes, err := Reconcile(owner, original, edited)
	require.NoError(t, err)

	assert.Empty(t, changes.Inserts)
	assert.Empty(t, changes.Updates)
	assert.Equal(t, []int64{1}, changes.Deletes)
}

func TestReconcile_UpdatePrice(t *testing.T) {
	original := []domain.Purchase{rec(1, "food", "bread", "10", 0)}
	edited := []domain.Purchase{rec(1, "food", "bread", "12", 0)}

	changes, err := Reconcile(owner, original, edited)
	require.NoError(t, err)

	assert.Empty(t, changes.Inserts)
	assert.Empty(t, changes.Deletes)
	require.Len(t, changes.Updates, 1)
	assert.Equal(t, int64(1), changes.Updates[0].ID)
	assert.True(t, changes.Updates[0].Price.Equal(decimal.NewFromInt(12)))
}

func TestReconcile_InsertNewRow(t *testing.T) {
	row := rec(0, "x", "y", "5", 0)
	row.UserID = 0

	changes, err := Reconcile(owner, nil, []domain.Purchase{row})
	require.NoError(t, err)

	assert.Empty(t, changes.Deletes)
	assert.Empty(t, changes.Updates)
	require.Len(t, changes.Inserts, 1)
	assert.Equal(t, int64(0), changes.Inserts[0].ID)
	assert.Equal(t, owner, changes.Inserts[0].UserID)
	assert.Equal(t, "x", changes.Inserts[0].Category)
}

func TestReconcile_UnknownIDBecomesInsert(t *testing.T) {
	original := []domain.Purchase{rec(1, "food", "bread", "10", 0)}
	edited := []domain.Purchase{rec(1, "food", "bread", "10", 0), rec(99, "food", "cheese", "7", 1)}

	changes, err := Reconcile(owner, original, edited)
	require.NoError(t, err)

	require.Len(t, changes.Inserts, 1)
	assert.Equal(t, int64(0), changes.Inserts[0].ID, "unknown ids are reassigned by storage")
	assert.Equal(t, "cheese", changes.Inserts[0].Subcategory)
	assert.Empty(t, changes.Updates)
	assert.Empty(t, changes.Deletes)
}

func TestReconcile_EmptyEditedDeletesAll(t *testing.T) {
	original := []domain.Purchase{rec(3, "a", "b", "1", 0), rec(1, "a", "b", "1", 0), rec(2, "a", "b", "1", 0)}

	changes, err := Reconcile(owner, original, []domain.Purchase{})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, changes.Deletes)
	assert.True(t, changes.DeletesAll(original))
}

func TestReconcile_DeletesAllIsFalseWhenRowsRemain(t *testing.T) {
	original := []domain.Purchase{rec(1, "a", "b", "1", 0)}
	edited := []domain.Purchase{rec(0, "a", "b", "1", 0)}

	changes, err := Reconcile(owner, original, edited)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, changes.Deletes)
	assert.False(t, changes.DeletesAll(original))
	assert.False(t, changes.DeletesAll(nil))
}

func TestReconcile_TimestampComparedAsInstant(t *testing.T) {
	original := []domain.Purchase{rec(1, "food", "bread", "10", 0)}
	shifted := rec(1, "food", "bread", "10", 0)
	shifted.Timestamp = shifted.Timestamp.In(time.FixedZone("MSK", 3*60*60))

	changes, err := Reconcile(owner, original, []domain.Purchase{shifted})
	require.NoError(t, err)
	assert.True(t, changes.IsEmpty())

	moved := rec(1, "food", "bread", "10", 1)
	changes, err = Reconcile(owner, original, []domain.Purchase{moved})
	require.NoError(t, err)
	assert.Len(t, changes.Updates, 1)
}

func TestReconcile_PriceIsExact(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		updated bool
	}{
		{"trailing zeros are equal", "10", "10.00", false},
		{"smallest cent differs", "10.00", "10.01", true},
		{"zeros past the scale are equal", "10.5", "10.500", false},
		{"largest storable values differ", "9999999999.99", "9999999999.98", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := []domain.Purchase{rec(1, "food", "bread", tt.from, 0)}
			edited := []domain.Purchase{rec(1, "food", "bread", tt.to, 0)}

			changes, err := Reconcile(owner, original, edited)
			require.NoError(t, err)
			assert.Equal(t, tt.updated, len(changes.Updates) == 1)
		})
	}
}

func TestReconcile_InvalidSnapshot(t *testing.T) {
	valid := rec(1, "food", "bread", "10", 0)

	noCategory := valid
	noCategory.Category = "  "
	noSubcategory := valid
	noSubcategory.Subcategory = ""
	noTimestamp := valid
	noTimestamp.Timestamp = time.Time{}
	foreign := valid
	foreign.UserID = owner + 1
	subCent := valid
	subCent.Price = decimal.RequireFromString("10.005")
	tooLarge := valid
	tooLarge.Price = decimal.RequireFromString("12345678901234.5")

	tests := []struct {
		name     string
		original []domain.Purchase
		edited   []domain.Purchase
	}{
		{"duplicate id in edited", []domain.Purchase{valid}, []domain.Purchase{valid, valid}},
		{"duplicate id in original", []domain.Purchase{valid, valid}, nil},
		{"missing category", nil, []domain.Purchase{noCategory}},
		{"missing subcategory", nil, []domain.Purchase{noSubcategory}},
		{"missing timestamp", []domain.Purchase{noTimestamp}, nil},
		{"record of another owner", []domain.Purchase{foreign}, nil},
		{"price below a cent", []domain.Purchase{valid}, []domain.Purchase{subCent}},
		{"price overflows column", nil, []domain.Purchase{tooLarge}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(owner, tt.original, tt.edited)
			assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
		})
	}
}

func TestReconcile_NewRowsMayShareZeroID(t *testing.T) {
	edited := []domain.Purchase{rec(0, "a", "b", "1", 0), rec(0, "a", "b", "1", 0)}

	changes, err := Reconcile(owner, nil, edited)
	require.NoError(t, err)
	assert.Len(t, changes.Inserts, 2)
}

// applyInMemory plays changes onto original the way storage would, handing
// out fresh ids for inserts.
func applyInMemory(original []domain.Purchase, changes domain.Changes, nextID int64) []domain.Purchase {
	rows := map[int64]domain.Purchase{}
	for _, p := range original {
		rows[p.ID] = p
	}
	for _, id := range changes.Deletes {
		delete(rows, id)
	}
	for _, p := range changes.Updates {
		rows[p.ID] = p
	}
	for _, p := range changes.Inserts {
		p.ID = nextID
		nextID++
		rows[p.ID] = p
	}

	out := make([]domain.Purchase, 0, len(rows))
	for _, p := range rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func TestReconcile_RoundTrip(t *testing.T) {
	original := []domain.Purchase{
		rec(1, "food", "bread", "10", 0),
		rec(2, "food", "milk", "3.20", 0),
		rec(3, "transport", "taxi", "15", 1),
		rec(4, "fun", "cinema", "9.99", 2),
	}
	edited := []domain.Purchase{
		rec(4, "fun", "theatre", "25", 2),
		rec(2, "food", "milk", "3.20", 0),
		rec(0, "health", "pharmacy", "4.75", 3),
		rec(1, "food", "bread", "11", 0),
	}

	changes, err := Reconcile(owner, original, edited)
	require.NoError(t, err)

	got := applyInMemory(original, changes, 100)
	require.Len(t, got, len(edited))

	want := map[string]domain.Purchase{}
	for _, p := range edited {
		want[p.Subcategory] = p
	}
	for _, p := range got {
		w, ok := want[p.Subcategory]
		require.True(t, ok, "unexpected row %v", p)
		assert.True(t, w.SameFields(p), "row %s differs", p.Subcategory)
		if w.ID != 0 {
			assert.Equal(t, w.ID, p.ID)
		}
	}

	again, err := Reconcile(owner, got, got)
	require.NoError(t, err)
	assert.True(t, again.IsEmpty())
}
