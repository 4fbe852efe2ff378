// Package tracker runs the background loop that re-checks prices for all
// active tracked products and emits notifications on threshold crossings.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoptrack/backend/internal/logger"
	"github.com/shoptrack/backend/internal/marketplace"
	"github.com/shoptrack/backend/internal/model"
	"github.com/shoptrack/backend/internal/repository"
)

// Resolver turns a stored reference into the product's current name and
// price. marketplace.ErrUnresolvable means "try again next cycle".
type Resolver interface {
	Resolve(ctx context.Context, reference string) (*marketplace.ProductInfo, error)
}

// Notifier receives events for persisted price moves that met the product's
// threshold. Implementations must not propagate delivery failures.
type Notifier interface {
	NotifyPriceChange(ctx context.Context, product *model.Product, oldPrice, newPrice decimal.Decimal)
}

// Config holds the tracker's timing knobs.
type Config struct {
	Interval         time.Duration // Sleep between full passes
	RecoveryInterval time.Duration // Shortened sleep after a failed pass
	Pacing           time.Duration // Delay between consecutive product checks
}

// DefaultConfig returns the default tracker configuration
func DefaultConfig() Config {
	return Config{
		Interval:         30 * time.Minute,
		RecoveryInterval: 5 * time.Minute,
		Pacing:           2 * time.Second,
	}
}

// priceEpsilon absorbs rounding noise from upstream: a resolved price must
// differ from the stored one by strictly more than this to count as a
// change.
var priceEpsilon = decimal.NewFromFloat(0.01)

type checkResult int

const (
	checkSkipped checkResult = iota
	checkUnchanged
	checkUpdated
	checkNotified
)

// Tracker owns the scheduled price-checking loop. Passes never overlap: the
// loop is strictly sequential within a pass and sleeps between passes.
type Tracker struct {
	products repository.ProductRepository
	history  repository.PriceHistoryRepository
	resolver Resolver
	notifier Notifier
	cfg      Config

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Tracker
func New(
	products repository.ProductRepository,
	history repository.PriceHistoryRepository,
	resolver Resolver,
	notifier Notifier,
	cfg Config,
) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.RecoveryInterval <= 0 {
		cfg.RecoveryInterval = DefaultConfig().RecoveryInterval
	}

	return &Tracker{
		products: products,
		history:  history,
		resolver: resolver,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Start launches the loop in a background goroutine. Calling Start on a
// running tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})

	logger.Info("price tracker started",
		"interval", t.cfg.Interval,
		"pacing", t.cfg.Pacing,
	)

	go t.run(ctx)
}

// Stop signals the loop to exit at its next suspension point and waits for
// it to return. A product check already past its persist step completes
// before the loop exits.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Info("price tracker stopped")
}

// IsRunning reports whether the loop is active.
func (t *Tracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	for {
		err := t.runPass(ctx)
		if ctx.Err() != nil {
			return
		}

		sleep := t.cfg.Interval
		if err != nil {
			logger.Error("tracking pass failed", "error", err.Error())
			sleep = t.cfg.RecoveryInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// runPass performs one full iteration over all active products. Individual
// product failures are swallowed inside checkProduct; only pass-level
// failures (including panics) surface here.
func (t *Tracker) runPass(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pass panicked: %v", r)
		}
	}()

	ctx = logger.WithPassID(ctx, uuid.NewString())
	log := logger.FromContext(ctx)
	start := time.Now()

	// Fresh read each pass, no caching between passes
	products, err := t.products.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active products: %w", err)
	}

	log.Info("tracking pass started", "products", len(products))

	var updated, notified int
	for i := range products {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch t.checkProduct(ctx, &products[i]) {
		case checkUpdated:
			updated++
		case checkNotified:
			updated++
			notified++
		}

		// Pace upstream requests between products
		if i < len(products)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.cfg.Pacing):
			}
		}
	}

	log.Info("tracking pass finished",
		"products", len(products),
		"updated", updated,
		"notified", notified,
		"duration", time.Since(start),
	)
	return nil
}

// checkProduct resolves one product's current price, persists a change and
// notifies when the move meets the product's threshold. Cancellation is not
// honored between the persist and the notification.
func (t *Tracker) checkProduct(ctx context.Context, product *model.Product) checkResult {
	ctx = logger.WithProductID(ctx, product.ID)
	log := logger.FromContext(ctx)

	// Construction-time validation should prevent this
	if !marketplace.BelongsToMarketplace(product.URL) {
		log.Warn("reference outside supported marketplace, skipping", "url", product.URL)
		return checkSkipped
	}

	info, err := t.resolver.Resolve(ctx, product.URL)
	if err != nil {
		log.Debug("price resolution failed, will retry next pass", "error", err.Error())
		return checkSkipped
	}

	oldPrice := product.CurrentPrice
	diff := info.Price.Sub(oldPrice).Abs()

	// Changed only when the move exceeds the rounding epsilon
	if diff.LessThanOrEqual(priceEpsilon) {
		return checkUnchanged
	}

	persisted, err := t.products.UpdatePrice(ctx, product.ID, info.Price)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			log.Debug("product vanished before price update")
		} else {
			log.Warn("price update failed", "error", err.Error())
		}
		return checkSkipped
	}

	if err := t.history.Insert(ctx, product.ID, info.Price); err != nil {
		log.Warn("price history insert failed", "error", err.Error())
	}

	log.Info("price updated",
		"old_price", oldPrice.String(),
		"new_price", info.Price.String(),
	)

	if diff.GreaterThanOrEqual(persisted.PriceThreshold) {
		t.notifier.NotifyPriceChange(ctx, persisted, oldPrice, info.Price)
		return checkNotified
	}
	return checkUpdated
}

// CheckNow performs an immediate check for a single product outside the
// regular schedule. Returns false when the id is not among active products.
func (t *Tracker) CheckNow(ctx context.Context, productID int64) bool {
	products, err := t.products.ListActive(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("on-demand check failed to list products", "error", err.Error())
		return false
	}

	for i := range products {
		if products[i].ID == productID {
			t.checkProduct(ctx, &products[i])
			return true
		}
	}
	return false
}
