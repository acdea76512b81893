package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nebula-retail/storefront/internal/cart"
)

func product(id string, price string) cart.Product {
	return cart.Product{
		ID:        id,
		Name:      "product " + id,
		UnitPrice: decimal.RequireFromString(price),
		ImageURL:  "https://img.example/" + id + ".jpg",
	}
}

func TestAddItemAccumulatesExistingLine(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "29.99"), 1)
	store.AddItem(product("p1", "29.99"), 1)

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	require.Equal(t, 2, snap.Lines[0].Quantity)
	require.Equal(t, 2, snap.ItemCount)
	require.True(t, snap.Subtotal.Equal(decimal.RequireFromString("59.98")), "got %s", snap.Subtotal)
}

func TestAddItemNonPositiveQuantity(t *testing.T) {
	store := cart.New()

	store.AddItem(product("p1", "10.00"), 0)
	store.AddItem(product("p2", "10.00"), -3)
	require.True(t, store.Snapshot().Empty())

	store.AddItem(product("p1", "10.00"), 2)
	store.AddItem(product("p1", "10.00"), -2)
	require.True(t, store.Snapshot().Empty(), "accumulating to zero should remove the line")
}

func TestUpdateQuantitySetsExactValue(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "5.00"), 2)

	store.UpdateQuantity("p1", 7)
	snap := store.Snapshot()
	require.Equal(t, 7, snap.Lines[0].Quantity)
	require.Equal(t, 7, snap.ItemCount)
}

func TestUpdateQuantityRemovesAtZeroOrBelow(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "5.00"), 2)
	store.AddItem(product("p2", "3.00"), 1)

	store.UpdateQuantity("p1", 0)
	require.Len(t, store.Snapshot().Lines, 1)

	store.UpdateQuantity("p2", -4)
	require.True(t, store.Snapshot().Empty())
}

func TestUpdateQuantityUnknownIDNeverInserts(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "5.00"), 1)

	store.UpdateQuantity("missing", 3)
	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	require.Equal(t, "p1", snap.Lines[0].ProductID)
	require.Equal(t, 1, snap.ItemCount)
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "5.00"), 1)

	store.RemoveItem("missing")
	require.Len(t, store.Snapshot().Lines, 1)

	store.RemoveItem("p1")
	require.True(t, store.Snapshot().Empty())
}

func TestClearIsIdempotent(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "5.00"), 3)

	store.Clear()
	require.True(t, store.Snapshot().Empty())
	require.Equal(t, 0, store.ItemCount())

	store.Clear()
	require.True(t, store.Snapshot().Empty())
}

func TestDerivedAggregates(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "30.00"), 2)
	store.AddItem(product("p2", "12.75"), 3)

	require.Equal(t, 5, store.ItemCount())
	require.True(t, store.Subtotal().Equal(decimal.RequireFromString("98.25")), "got %s", store.Subtotal())

	snap := store.Snapshot()
	require.Equal(t, 5, snap.ItemCount)
	require.True(t, snap.Subtotal.Equal(decimal.RequireFromString("98.25")))
}

func TestLineKeepsPriceFromTimeOfAddition(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "10.00"), 1)
	store.AddItem(product("p1", "99.00"), 1)

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	require.True(t, snap.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestSnapshotIsACopy(t *testing.T) {
	store := cart.New()
	store.AddItem(product("p1", "10.00"), 1)

	snap := store.Snapshot()
	store.AddItem(product("p2", "20.00"), 1)

	require.Len(t, snap.Lines, 1)
	require.Equal(t, 1, snap.ItemCount)
}

func TestSubscribeObservesEveryMutation(t *testing.T) {
	store := cart.New()
	var seen []cart.Snapshot
	cancel := store.Subscribe(func(snap cart.Snapshot) {
		seen = append(seen, snap)
	})

	store.AddItem(product("p1", "10.00"), 2)
	store.UpdateQuantity("p1", 1)
	store.RemoveItem("p1")
	store.Clear()

	require.Len(t, seen, 4)
	require.Equal(t, 2, seen[0].ItemCount)
	require.Equal(t, 1, seen[1].ItemCount)
	require.True(t, seen[2].Empty())

	cancel()
	store.AddItem(product("p1", "10.00"), 1)
	require.Len(t, seen, 4, "cancelled subscriber must not be notified")
}

func TestSubscriberNoOpMutationsDoNotNotify(t *testing.T) {
	store := cart.New()
	calls := 0
	store.Subscribe(func(cart.Snapshot) { calls++ })

	store.AddItem(product("p1", "10.00"), 0)
	store.UpdateQuantity("missing", 3)
	store.RemoveItem("missing")

	require.Equal(t, 0, calls)
}

func TestSubscriberMayReadTheStore(t *testing.T) {
	store := cart.New()
	var observed int
	store.Subscribe(func(cart.Snapshot) {
		observed = store.ItemCount()
	})

	store.AddItem(product("p1", "10.00"), 3)
	require.Equal(t, 3, observed)
}
