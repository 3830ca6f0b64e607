package cart

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrito-mascota-me/models"
)

func newTestStore() (*Store, *fakeCartRows, *LimitNotifier) {
	rows := &fakeCartRows{}
	notifier := NewLimitNotifier()
	return NewStore("erika", rows, notifier), rows, notifier
}

func simpleItem(id string, stock int) *models.CatalogItem {
	return &models.CatalogItem{ID: id, Name: "Buso " + id, Price: 45000, MarketPrice: 52000, Stock: stock}
}

func TestAddItemStopsAtStockCeiling(t *testing.T) {
	store, _, notifier := newTestStore()
	events := notifier.Subscribe()

	item := simpleItem("P1", 3)
	for i := 0; i < 4; i++ {
		store.AddItem(item, "", "")
	}

	state := store.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 3, state.Lines[0].Quantity)
	assert.Equal(t, 3, state.TotalQuantity)

	got := drainEvents(events)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Ceiling)
	assert.Equal(t, "P1", got[0].ProductID)
}

func TestAddItemPersistsAbsoluteQuantity(t *testing.T) {
	store, rows, _ := newTestStore()

	item := simpleItem("P1", 5)
	store.AddItem(item, "", "")
	store.AddItem(item, "", "")

	// Each remote write carries the absolute target quantity, so the
	// second add must have synced qty=2 regardless of completion order
	require.Eventually(t, func() bool {
		return rows.upsertCount() == 2
	}, time.Second, 5*time.Millisecond)
	rows.mu.Lock()
	defer rows.mu.Unlock()
	quantities := []int{rows.upserts[0].Quantity, rows.upserts[1].Quantity}
	assert.Contains(t, quantities, 1)
	assert.Contains(t, quantities, 2)
}

func TestUpdateQuantityRemovesLineAtZeroOrBelow(t *testing.T) {
	store, rows, _ := newTestStore()

	item := simpleItem("P1", 5)
	store.AddItem(item, "", "")
	store.AddItem(item, "", "")

	store.UpdateQuantity("P1", "", "", -5)

	assert.Empty(t, store.State().Lines)
	require.Eventually(t, func() bool {
		return rows.deleteCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestUpdateQuantityRejectsIncrementPastCeiling(t *testing.T) {
	store, _, notifier := newTestStore()
	events := notifier.Subscribe()

	item := simpleItem("P1", 2)
	store.AddItem(item, "", "")
	store.UpdateQuantity("P1", "", "", 5)

	state := store.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 1, state.Lines[0].Quantity)

	got := drainEvents(events)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Ceiling)
}

func TestUpdateQuantityDecrementIgnoresCeiling(t *testing.T) {
	store, _, _ := newTestStore()

	// Line persisted before stock dropped below its quantity
	store.Replace([]models.CartLine{{ProductID: "P1", Quantity: 5, Stock: 2, Price: 45000}})

	store.UpdateQuantity("P1", "", "", -1)
	state := store.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 4, state.Lines[0].Quantity)
}

func TestUpdateQuantityOnMissingLineIsNoop(t *testing.T) {
	store, rows, _ := newTestStore()
	store.UpdateQuantity("P9", "", "", 1)
	assert.Empty(t, store.State().Lines)
	assert.Equal(t, 0, rows.updateCount())
}

func TestRemoveItemThenAddYieldsQuantityOne(t *testing.T) {
	store, _, _ := newTestStore()

	item := simpleItem("P1", 5)
	store.AddItem(item, "", "")
	store.AddItem(item, "", "")
	store.RemoveItem("P1", "", "")
	store.AddItem(item, "", "")

	state := store.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 1, state.Lines[0].Quantity)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	store, rows, _ := newTestStore()
	store.RemoveItem("P1", "", "")
	assert.Empty(t, store.State().Lines)
	// Nothing existed, nothing synced
	assert.Equal(t, 0, rows.deleteCount())
}

func TestNullishSelectionsCollapseToOneLine(t *testing.T) {
	store, _, _ := newTestStore()

	item := simpleItem("P1", 5)
	store.AddItem(item, "", "")
	store.AddItem(item, "null", "undefined")
	store.AddItem(item, "  ", "")

	state := store.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 3, state.Lines[0].Quantity)
	assert.Equal(t, "", state.Lines[0].SelectedSize)
	assert.Equal(t, "", state.Lines[0].SelectedColor)
}

func TestVariantSelectionsAreDistinctLines(t *testing.T) {
	store, _, _ := newTestStore()

	item := &models.CatalogItem{
		ID: "42", Name: "Buso", Price: 45000, Stock: 10,
		Variants: []models.Variant{
			{Color: "rojo", Size: "MN", Quantity: 3},
			{Color: "negro", Size: "MN", Quantity: 5},
		},
	}
	store.AddItem(item, "MN", "rojo")
	store.AddItem(item, "MN", "negro")

	assert.Len(t, store.State().Lines, 2)
}

func TestClearCartEmptiesAndDeletesAll(t *testing.T) {
	store, rows, _ := newTestStore()

	store.AddItem(simpleItem("P1", 5), "", "")
	store.AddItem(simpleItem("P2", 5), "", "")
	store.ClearCart()

	assert.Empty(t, store.State().Lines)
	require.Eventually(t, func() bool {
		return rows.deleteAllCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestGuestStoreStaysLocalOnly(t *testing.T) {
	rows := &fakeCartRows{}
	store := NewStore("", rows, NewLimitNotifier())

	store.AddItem(simpleItem("P1", 5), "", "")
	store.UpdateQuantity("P1", "", "", 1)
	store.ClearCart()

	// Repository never touched without a user id
	assert.Equal(t, 0, rows.upsertCount())
	assert.Equal(t, 0, rows.updateCount())
	assert.Equal(t, 0, rows.deleteAllCount())
}

func TestStateReturnsTotals(t *testing.T) {
	store, _, _ := newTestStore()

	store.AddItem(simpleItem("P1", 5), "", "")
	store.AddItem(simpleItem("P1", 5), "", "")
	store.AddItem(simpleItem("P2", 5), "", "")

	state := store.State()
	assert.Equal(t, 3, state.TotalQuantity)
	assert.Equal(t, int64(3*45000), state.TotalPrice)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	store, _, _ := newTestStore()
	states := store.Subscribe()

	store.AddItem(simpleItem("P1", 5), "", "")

	select {
	case state := <-states:
		require.Len(t, state.Lines, 1)
		assert.Equal(t, 1, state.Lines[0].Quantity)
	case <-time.After(time.Second):
		t.Fatal("no state snapshot received")
	}
}

func TestConcurrentAddsNeverExceedCeiling(t *testing.T) {
	store, _, _ := newTestStore()
	item := simpleItem("P1", 7)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddItem(item, "", "")
		}()
	}
	wg.Wait()

	state := store.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 7, state.Lines[0].Quantity)
}
