package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/food-court-orders/internal/repository"
)

// Clearer empties every store's ledger once per weekly trigger window. The
// window is a specific weekday/hour/minute; the check runs far more often
// than once a minute can pass, so the last handled minute key is recorded
// and re-entries within the same minute are skipped. This operation is
// data-destructive and has no manual or HTTP trigger on purpose.
type Clearer struct {
	Orders  *repository.OrderRepo
	Weekday time.Weekday
	Hour    int
	Minute  int

	now         func() time.Time // injected clock; tests pin it
	lastCleared string           // minute key of the last handled trigger
}

// NewClearer builds a scheduler for the given weekly window.
func NewClearer(orders *repository.OrderRepo, weekday time.Weekday, hour, minute int) *Clearer {
	return &Clearer{
		Orders:  orders,
		Weekday: weekday,
		Hour:    hour,
		Minute:  minute,
		now:     time.Now,
	}
}

// SetClock replaces the time source for tests.
func (c *Clearer) SetClock(fn func() time.Time) { c.now = fn }

// Check compares the current time against the trigger window and, on a
// fresh match, truncates every ledger. It returns how many ledgers were
// cleared (0 when outside the window or already handled this minute).
//
// A failure clearing one store is logged and the sweep continues; the
// minute key is recorded regardless, because re-running the sweep in the
// same minute would double-clear the stores that did succeed.
func (c *Clearer) Check() int {
	now := c.now()
	if now.Weekday() != c.Weekday || now.Hour() != c.Hour || now.Minute() != c.Minute {
		return 0
	}
	key := now.Format("2006-01-02T15:04")
	if c.lastCleared == key {
		return 0
	}
	c.lastCleared = key

	names, err := c.Orders.StoreNames()
	if err != nil {
		log.Printf("weekly clear: listing ledgers: %v", err)
		return 0
	}
	cleared := 0
	for _, name := range names {
		if err := c.Orders.Clear(name); err != nil {
			log.Printf("weekly clear: store %s: %v", name, err)
			continue
		}
		cleared++
	}
	log.Printf("weekly clear: emptied %d ledger(s) at %s", cleared, now.Format(time.RFC3339))
	return cleared
}

// Run ticks Check until ctx is done. The tick must be much shorter than a
// minute so the window can never be skipped over.
func (c *Clearer) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.Check()
		case <-ctx.Done():
			return
		}
	}
}
