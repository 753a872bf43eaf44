package shop

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/learnportal/internal/content"
	syncx "github.com/mind-engage/learnportal/internal/sync"
)

func TestCartOperations(t *testing.T) {
	c := NewCart()
	c.Add("b1")
	c.Add("b2")
	c.Add("b1")
	assert.Equal(t, []Item{{"b1", 2}, {"b2", 1}}, c.Items())

	c.SetQuantity("b2", 5)
	assert.Equal(t, 5, c.Quantity("b2"))
	c.SetQuantity("b1", 0)
	assert.Equal(t, []Item{{"b2", 5}}, c.Items())

	c.Remove("missing")
	c.Remove("b2")
	assert.Equal(t, 0, c.Len())

	c.Add("b3")
	c.Clear()
	assert.Empty(t, c.Items())
}

type fixture struct {
	store  *content.Repo
	events *syncx.MemoryLog
	shop   *Shop
	b1, b2 content.Book
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	n := 0
	store := content.NewRepo(content.NewMemoryDocs(), func() string { n++; return "id" + strconv.Itoa(n) })
	b1, err := store.CreateBook(ctx, content.Book{Title: "Go", Author: "A", Price: 19.99, Stock: 3})
	require.NoError(t, err)
	b2, err := store.CreateBook(ctx, content.Book{Title: "SQL", Author: "B", Price: 0.1, Stock: 1})
	require.NoError(t, err)
	ev := &syncx.MemoryLog{}
	return fixture{store: store, events: ev, shop: New(store, ev, func() string { return "order-1" }), b1: b1, b2: b2}
}

func TestQuoteUsesDecimalTotals(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.shop.Add(ctx, "u1", f.b1.ID))
	require.NoError(t, f.shop.Add(ctx, "u1", f.b1.ID))
	f.shop.With("u1", func(c *Cart) { c.SetQuantity(f.b2.ID, 3) })

	q, err := f.shop.Quote(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	assert.Equal(t, 5, q.Count)
	assert.Equal(t, "39.98", q.Lines[0].Subtotal.StringFixed(2))
	assert.Equal(t, "0.30", q.Lines[1].Subtotal.StringFixed(2))
	assert.Equal(t, "40.28", q.Total.StringFixed(2))

	other, err := f.shop.Quote(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other.Lines)
	assert.True(t, other.Total.IsZero())
}

func TestAddUnknownBook(t *testing.T) {
	f := setup(t)
	assert.ErrorIs(t, f.shop.Add(context.Background(), "u1", "nope"), content.ErrNotFound)
}

func TestCheckout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.shop.With("u1", func(c *Cart) {
		c.SetQuantity(f.b1.ID, 2)
		c.SetQuantity(f.b2.ID, 1)
	})

	o, err := f.shop.Checkout(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", o.ID)
	assert.Equal(t, "40.08", o.Total.StringFixed(2))

	b1, _ := f.store.GetBook(ctx, f.b1.ID)
	b2, _ := f.store.GetBook(ctx, f.b2.ID)
	assert.Equal(t, 1, b1.Stock)
	assert.Equal(t, 0, b2.Stock)

	f.shop.With("u1", func(c *Cart) { assert.Equal(t, 0, c.Len()) })
	evs, _ := f.events.Since(ctx, 0, 10)
	require.Len(t, evs, 1)
	assert.Equal(t, syncx.TypeOrderPlaced, evs[0].Type)

	_, err = f.shop.Checkout(ctx, "u1")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutOutOfStockRollsBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.shop.With("u1", func(c *Cart) {
		c.SetQuantity(f.b1.ID, 1)
		c.SetQuantity(f.b2.ID, 2)
	})

	_, err := f.shop.Checkout(ctx, "u1")
	assert.ErrorIs(t, err, content.ErrOutOfStock)

	b1, _ := f.store.GetBook(ctx, f.b1.ID)
	b2, _ := f.store.GetBook(ctx, f.b2.ID)
	assert.Equal(t, 3, b1.Stock)
	assert.Equal(t, 1, b2.Stock)
	f.shop.With("u1", func(c *Cart) { assert.Equal(t, 2, c.Len()) })
}

func TestCheckoutMissingBook(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.shop.Add(ctx, "u1", f.b1.ID))
	require.NoError(t, f.store.DeleteBook(ctx, f.b1.ID))

	q, err := f.shop.Quote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{f.b1.ID}, q.Missing)

	_, err = f.shop.Checkout(ctx, "u1")
	assert.ErrorIs(t, err, content.ErrNotFound)
}
