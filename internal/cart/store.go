package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Product carries the catalog attributes copied onto a line at the time of
// addition. Prices are not re-synced if the catalog changes later.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl"`
}

// Line is one product's presence in the cart. Quantity is always >= 1; a
// line that would drop to zero or below is removed instead.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns unit price times quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is an immutable view of the cart taken at a point in time.
// ItemCount and Subtotal are derived from the lines on every snapshot and
// never stored, so they cannot drift from the line list.
type Snapshot struct {
	Lines     []Line          `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Empty reports whether the snapshot holds no lines.
func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }

// Store owns the line items of a single session's cart. All mutations go
// through its methods; a mutex serializes them the way the browser event
// loop serialized the original client state. Operations never fail —
// invalid input degrades to a removal or a no-op.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	subs    map[int]func(Snapshot)
	nextSub int
}

// New returns an empty cart store.
func New() *Store {
	return &Store{subs: make(map[int]func(Snapshot))}
}

// AddItem inserts a line for the product or increments the existing line's
// quantity. Accumulating onto an existing line is defined behavior, not an
// error. A resulting quantity <= 0 removes the line; adding a non-positive
// quantity for an absent product is a no-op.
func (s *Store) AddItem(p Product, qty int) {
	s.mu.Lock()
	for i, line := range s.lines {
		if line.ProductID == p.ID {
			next := line.Quantity + qty
			if next <= 0 {
				s.lines = append(s.lines[:i], s.lines[i+1:]...)
			} else {
				s.lines[i].Quantity = next
			}
			s.notifyLocked()
			return
		}
	}
	if qty <= 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageURL:  p.ImageURL,
		Quantity:  qty,
	})
	s.notifyLocked()
}

// UpdateQuantity sets the line's quantity exactly. A quantity <= 0 removes
// the line. An unknown product id with a positive quantity is a no-op — the
// operation only updates existing lines, it never inserts one.
func (s *Store) UpdateQuantity(productID string, qty int) {
	s.mu.Lock()
	for i, line := range s.lines {
		if line.ProductID != productID {
			continue
		}
		if qty <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Quantity = qty
		}
		s.notifyLocked()
		return
	}
	s.mu.Unlock()
}

// RemoveItem deletes the line if present. Absent ids are a silent no-op.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	for i, line := range s.lines {
		if line.ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.notifyLocked()
			return
		}
	}
	s.mu.Unlock()
}

// Clear empties the cart unconditionally. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.notifyLocked()
}

// Snapshot returns a copy of the lines with the derived aggregates.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ItemCount is the sum of all line quantities, not the line count.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Subtotal sums unit price times quantity over all lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Subscribe registers an observer invoked with a fresh snapshot after every
// mutation. The returned func cancels the subscription. Observers run
// synchronously but outside the store lock, so they may read the store.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	count := 0
	subtotal := decimal.Zero
	for _, line := range lines {
		count += line.Quantity
		subtotal = subtotal.Add(line.Subtotal())
	}
	return Snapshot{Lines: lines, ItemCount: count, Subtotal: subtotal}
}

// notifyLocked releases the lock and fans the current snapshot out to all
// subscribers. Callers must hold the lock and must not use it afterwards.
func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
