package services

import (
	"errors"
	"time"

	"repx/internal/models"
	"repx/internal/providers"
)

var (
	ErrNoTarget        = errors.New("no target selected")
	ErrScoreOutOfRange = errors.New("score out of range")
)

type RatingServiceInterface interface {
	SubmitRating(target models.Identity, score int, comment string) (*models.Rating, error)
	DeleteGiven(timestamp int64, driver models.Identity) bool
	DeleteReceived(timestamp int64, reviewer models.Identity) bool
	GivenRatings() []*models.Rating
	ReceivedRatings(id models.Identity) []*models.Rating
	Summary(id models.Identity) (float64, int)
	RecordMeta(id models.Identity, meta *models.ParticipantMeta)
	Meta(id models.Identity) (*models.ParticipantMeta, bool)
	LocalIdentity() models.Identity
}

type RatingService struct {
	store    *models.RatingStore
	identity models.Identity
	logger   providers.Logger
	now      func() int64
}

func NewRatingService(store *models.RatingStore, identity models.Identity, logger providers.Logger) RatingServiceInterface {
	return &RatingService{
		store:    store,
		identity: identity,
		logger:   logger,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// SubmitRating stores the local participant's current rating for
// target, replacing any earlier one. The rating is persisted before any
// delivery attempt; transmission is the sync layer's business.
func (rs *RatingService) SubmitRating(target models.Identity, score int, comment string) (*models.Rating, error) {
	if target.IsEmpty() {
		return nil, ErrNoTarget
	}
	if !models.ValidScore(score) {
		return nil, ErrScoreOutOfRange
	}

	r := &models.Rating{
		Driver:     target,
		DriverName: target.Name(),
		Reviewer:   rs.identity,
		Score:      score,
		Comment:    comment,
		Timestamp:  rs.now(),
	}

	rs.store.AddGivenRating(target, r)
	rs.store.StoreSearchSeen(target, r.Timestamp)
	rs.logger.Debugf(providers.TypeApp, "rated %s: %d", target, score)

	return r, nil
}

func (rs *RatingService) DeleteGiven(timestamp int64, driver models.Identity) bool {
	return rs.store.DeleteGivenRating(timestamp, driver)
}

func (rs *RatingService) DeleteReceived(timestamp int64, reviewer models.Identity) bool {
	return rs.store.DeleteReceivedRating(rs.identity, timestamp, reviewer)
}

func (rs *RatingService) GivenRatings() []*models.Rating {
	return rs.store.GetAllGivenRatings()
}

func (rs *RatingService) ReceivedRatings(id models.Identity) []*models.Rating {
	if id.IsEmpty() {
		id = rs.identity
	}
	return rs.store.GetReceivedRatings(id)
}

// Summary is the arithmetic mean and count of received scores for id.
// (0, 0) when nothing has been received.
func (rs *RatingService) Summary(id models.Identity) (float64, int) {
	if id.IsEmpty() {
		id = rs.identity
	}
	ratings := rs.store.GetReceivedRatings(id)
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	return float64(sum) / float64(len(ratings)), len(ratings)
}

func (rs *RatingService) RecordMeta(id models.Identity, meta *models.ParticipantMeta) {
	rs.store.StoreParticipantMeta(id, meta)
}

func (rs *RatingService) Meta(id models.Identity) (*models.ParticipantMeta, bool) {
	return rs.store.GetParticipantMeta(id)
}

func (rs *RatingService) LocalIdentity() models.Identity {
	return rs.identity
}
