// Package shop implements the bookshop cart.
package shop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mind-engage/learnportal/internal/content"
	syncx "github.com/mind-engage/learnportal/internal/sync"
)

var ErrEmptyCart = errors.New("cart is empty")

// Cart maps book ids to quantities. It is not safe for concurrent use; Carts
// guards access.
type Cart struct {
	items map[string]int
	order []string // insertion order of book ids
}

func NewCart() *Cart { return &Cart{items: map[string]int{}} }

// Add puts one more copy of a book into the cart.
func (c *Cart) Add(bookID string) {
	if _, ok := c.items[bookID]; !ok {
		c.order = append(c.order, bookID)
	}
	c.items[bookID]++
}

func (c *Cart) Remove(bookID string) {
	if _, ok := c.items[bookID]; !ok {
		return
	}
	delete(c.items, bookID)
	for i, id := range c.order {
		if id == bookID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// SetQuantity sets a book's quantity; zero or less removes it.
func (c *Cart) SetQuantity(bookID string, qty int) {
	if qty <= 0 {
		c.Remove(bookID)
		return
	}
	if _, ok := c.items[bookID]; !ok {
		c.order = append(c.order, bookID)
	}
	c.items[bookID] = qty
}

func (c *Cart) Clear() {
	c.items = map[string]int{}
	c.order = nil
}

func (c *Cart) Quantity(bookID string) int { return c.items[bookID] }

func (c *Cart) Len() int { return len(c.order) }

// Item is one cart entry.
type Item struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

func (c *Cart) Items() []Item {
	out := make([]Item, len(c.order))
	for i, id := range c.order {
		out[i] = Item{BookID: id, Quantity: c.items[id]}
	}
	return out
}

// Line is a priced cart entry.
type Line struct {
	Book     content.Book    `json:"book"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Quote struct {
	Lines []Line          `json:"lines"`
	Count int             `json:"count"` // total copies
	Total decimal.Decimal `json:"total"`
	// Missing lists cart entries whose book is no longer in the catalogue.
	Missing []string `json:"missing,omitempty"`
}

type Order struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Lines    []Line          `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt int64           `json:"placed_at"`
}

// Shop holds one cart per user and prices them against the book catalogue.
type Shop struct {
	store  content.Store
	events syncx.Log
	newID  func() string

	mu    sync.Mutex
	carts map[string]*Cart
	locks map[string]*sync.Mutex // per-user checkout
}

// New builds a Shop. events may be nil.
func New(store content.Store, events syncx.Log, newID func() string) *Shop {
	return &Shop{
		store:  store,
		events: events,
		newID:  newID,
		carts:  map[string]*Cart{},
		locks:  map[string]*sync.Mutex{},
	}
}

// With runs fn on the user's cart under the shop lock.
func (s *Shop) With(userID string, fn func(c *Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = NewCart()
		s.carts[userID] = c
	}
	fn(c)
}

// Add checks that the book exists and adds one copy to the user's cart.
func (s *Shop) Add(ctx context.Context, userID, bookID string) error {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return err
	}
	s.With(userID, func(c *Cart) { c.Add(bookID) })
	return nil
}

func (s *Shop) items(userID string) []Item {
	var items []Item
	s.With(userID, func(c *Cart) { items = c.Items() })
	return items
}

// Quote prices the user's cart with current catalogue prices.
func (s *Shop) Quote(ctx context.Context, userID string) (Quote, error) {
	return s.quote(ctx, s.items(userID))
}

func (s *Shop) quote(ctx context.Context, items []Item) (Quote, error) {
	q := Quote{Lines: []Line{}, Total: decimal.Zero}
	for _, it := range items {
		b, err := s.store.GetBook(ctx, it.BookID)
		if errors.Is(err, content.ErrNotFound) {
			q.Missing = append(q.Missing, it.BookID)
			continue
		}
		if err != nil {
			return Quote{}, err
		}
		sub := decimal.NewFromFloat(b.Price).Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		q.Lines = append(q.Lines, Line{Book: b, Quantity: it.Quantity, Subtotal: sub})
		q.Count += it.Quantity
		q.Total = q.Total.Add(sub)
	}
	return q, nil
}

// Checkout decrements stock for every line and clears the cart. When any
// book lacks stock, the decrements already made are put back and the cart
// is left as it was.
func (s *Shop) Checkout(ctx context.Context, userID string) (Order, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	q, err := s.quote(ctx, s.items(userID))
	if err != nil {
		return Order{}, err
	}
	if len(q.Missing) > 0 {
		return Order{}, fmt.Errorf("book %s: %w", q.Missing[0], content.ErrNotFound)
	}
	if len(q.Lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	// lowest id first so concurrent checkouts take stock in the same order
	lines := append([]Line(nil), q.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].Book.ID < lines[j].Book.ID })
	var done []Line
	for _, l := range lines {
		if _, err := s.store.AdjustStock(ctx, l.Book.ID, -l.Quantity); err != nil {
			s.restock(ctx, done)
			return Order{}, fmt.Errorf("book %q: %w", l.Book.Title, err)
		}
		done = append(done, l)
	}

	o := Order{ID: s.newID(), UserID: userID, Lines: q.Lines, Total: q.Total, PlacedAt: time.Now().Unix()}
	s.With(userID, func(c *Cart) { c.Clear() })
	if s.events != nil {
		if err := s.events.Append(ctx, syncx.NewEvent(syncx.TypeOrderPlaced, o.ID, o)); err != nil {
			log.Printf("record order %s: %v", o.ID, err)
		}
	}
	return o, nil
}

func (s *Shop) restock(ctx context.Context, lines []Line) {
	for _, l := range lines {
		_, _ = s.store.AdjustStock(ctx, l.Book.ID, l.Quantity)
	}
}

func (s *Shop) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}
