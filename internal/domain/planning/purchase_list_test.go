package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPurchaseList(t *testing.T) {
	list, err := NewPurchaseList(3, time.Date(2025, 7, 7, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, ListDraft, list.Status)
	assert.Equal(t, time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC), list.PurchaseDate)

	_, err = NewPurchaseList(0, time.Now())
	assert.Error(t, err)
}

func TestPurchaseList_AppendSequencesTasks(t *testing.T) {
	list, err := NewPurchaseList(3, time.Now().UTC())
	require.NoError(t, err)

	first, err := list.Append(10, 100, 2)
	require.NoError(t, err)
	second, err := list.Append(11, 101, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, first.SequenceOrder)
	assert.Equal(t, 2, second.SequenceOrder)
	assert.Equal(t, PurchasePending, first.Status)

	_, err = list.Append(12, 102, 0)
	assert.Error(t, err)
}

func TestPurchaseList_Totals(t *testing.T) {
	list, err := NewPurchaseList(3, time.Now().UTC())
	require.NoError(t, err)

	_, err = list.Append(10, 100, 2)
	require.NoError(t, err)
	_, err = list.Append(11, 100, 1)
	require.NoError(t, err)
	_, err = list.Append(12, 101, 4)
	require.NoError(t, err)

	list.RecountTotals()
	assert.Equal(t, 3, list.TotalItems)
	assert.Equal(t, 2, list.TotalStores)
	assert.ElementsMatch(t, []int{100, 101}, list.DistinctStoreIDs())
}
