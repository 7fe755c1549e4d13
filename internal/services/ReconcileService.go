package services

import (
	"time"

	"github.com/spf13/cast"

	"repx/internal/codec"
	"repx/internal/models"
	"repx/internal/providers"
)

// Outcome reports what happened to one inbound review. Rejections are
// silent no-ops on the wire; Reason exists for logs and tests.
type Outcome struct {
	Accepted bool
	New      bool
	Reason   string
}

func rejected(reason string) Outcome {
	return Outcome{Reason: reason}
}

type ReconcileServiceInterface interface {
	Receive(payload codec.Table, sender models.Identity) Outcome
	OnNewRating(fn func(*models.Rating))
}

// ReconcileService merges inbound reviews into the received collection,
// holding the one-rating-per-reviewer invariant. Without the
// replace-by-reviewer step a single reviewer could stack duplicates and
// skew the average.
type ReconcileService struct {
	store    *models.RatingStore
	identity models.Identity
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	now      func() int64

	// listeners are registered during wiring, before the sync loop
	// starts. Fired only for genuinely new ratings.
	listeners []func(*models.Rating)
}

func NewReconcileService(store *models.RatingStore, identity models.Identity, logger providers.Logger, metrics providers.MetricsProviderInterface) ReconcileServiceInterface {
	return &ReconcileService{
		store:    store,
		identity: identity,
		logger:   logger,
		metrics:  metrics,
		now:      func() int64 { return time.Now().Unix() },
	}
}

func (c *ReconcileService) OnNewRating(fn func(*models.Rating)) {
	c.listeners = append(c.listeners, fn)
}

// Receive validates and merges one review table sent by sender.
// Validation short-circuits on the first failure; every rejection is a
// no-op beyond a debug log.
func (c *ReconcileService) Receive(payload codec.Table, sender models.Identity) Outcome {
	if payload == nil {
		return c.reject(sender, "missing review")
	}
	if sender.IsEmpty() {
		return c.reject(sender, "missing sender")
	}

	driver, _ := payload.String("driver")
	if models.Identity(driver) != c.identity {
		return c.reject(sender, "not addressed to us")
	}

	score, ok := payload.Int("rating")
	if !ok || !models.ValidScore(int(score)) {
		return c.reject(sender, "score out of range")
	}

	reviewer := sender
	if name, ok := payload.String("reviewer"); ok && name != "" {
		reviewer = models.Identity(name)
	}

	now := c.now()
	c.store.StoreReviewerSeen(sender, now)
	c.store.StoreReviewerSeen(reviewer, now)

	timestamp, ok := payload.Int("timestamp")
	if !ok || timestamp <= 0 {
		timestamp = now
	}

	driverName, _ := payload.String("driverName")
	if driverName == "" {
		driverName = c.identity.Name()
	}

	r := &models.Rating{
		Driver:     c.identity,
		DriverName: driverName,
		Reviewer:   reviewer,
		Score:      int(score),
		Comment:    cast.ToString(payload["comment"]),
		Timestamp:  timestamp,
	}

	replaced := c.store.UpsertReceived(c.identity, r)
	if replaced {
		c.metrics.IncRatingsUpdated()
		c.logger.Debugf(providers.TypeSync, "updated review from %s: %d", reviewer, r.Score)
		return Outcome{Accepted: true}
	}

	c.metrics.IncRatingsNew()
	c.logger.Infof(providers.TypeSync, "new review from %s: %d", reviewer, r.Score)
	for _, fn := range c.listeners {
		fn(r)
	}
	return Outcome{Accepted: true, New: true}
}

func (c *ReconcileService) reject(sender models.Identity, reason string) Outcome {
	c.logger.Debugf(providers.TypeSync, "review from %q rejected: %s", sender, reason)
	return rejected(reason)
}
