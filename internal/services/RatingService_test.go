package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repx/internal/models"
	"repx/internal/testutil"
)

const localIdentity = models.Identity("Thrall-Draenor")

func newRatingService(store *models.RatingStore) *RatingService {
	svc := NewRatingService(store, localIdentity, &testutil.MockLogger{}).(*RatingService)
	clock := int64(1000)
	svc.now = func() int64 {
		clock++
		return clock
	}
	return svc
}

func TestSubmitRating_StoresGiven(t *testing.T) {
	store := models.NewRatingStore()
	svc := newRatingService(store)

	r, err := svc.SubmitRating("Jaina-Proudmoore", 5, "clutch heals")
	require.NoError(t, err)

	assert.Equal(t, models.Identity("Jaina-Proudmoore"), r.Driver)
	assert.Equal(t, "Jaina", r.DriverName)
	assert.Equal(t, localIdentity, r.Reviewer)
	assert.Equal(t, 5, r.Score)
	assert.Equal(t, "clutch heals", r.Comment)
	assert.Greater(t, r.Timestamp, int64(0))

	given := store.GetAllGivenRatings()
	require.Len(t, given, 1)
	assert.Equal(t, r.Driver, given[0].Driver)
}

func TestSubmitRating_EmptyTarget(t *testing.T) {
	svc := newRatingService(models.NewRatingStore())

	_, err := svc.SubmitRating("", 4, "")
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestSubmitRating_ScoreOutOfRange(t *testing.T) {
	svc := newRatingService(models.NewRatingStore())

	for _, score := range []int{0, -1, 6, 100} {
		_, err := svc.SubmitRating("Jaina-Proudmoore", score, "")
		assert.ErrorIs(t, err, ErrScoreOutOfRange, "score %d", score)
	}
}

func TestSubmitRating_ReplacesEarlierForSameTarget(t *testing.T) {
	store := models.NewRatingStore()
	svc := newRatingService(store)

	_, err := svc.SubmitRating("Jaina-Proudmoore", 2, "wiped us")
	require.NoError(t, err)
	_, err = svc.SubmitRating("Jaina-Proudmoore", 5, "redeemed")
	require.NoError(t, err)

	given := store.GetAllGivenRatings()
	require.Len(t, given, 1)
	assert.Equal(t, 5, given[0].Score)
	assert.Equal(t, "redeemed", given[0].Comment)
}

func TestSubmitRating_RecordsTargetAsKnown(t *testing.T) {
	store := models.NewRatingStore()
	svc := newRatingService(store)

	_, err := svc.SubmitRating("Jaina-Proudmoore", 4, "")
	require.NoError(t, err)

	known := store.KnownParticipants()
	require.NotEmpty(t, known)
	ids := make([]models.Identity, len(known))
	for i, k := range known {
		ids[i] = k.Identity
	}
	assert.Contains(t, ids, models.Identity("Jaina-Proudmoore"))
}

func TestDeleteGiven(t *testing.T) {
	store := models.NewRatingStore()
	svc := newRatingService(store)

	r, err := svc.SubmitRating("Jaina-Proudmoore", 3, "")
	require.NoError(t, err)

	assert.False(t, svc.DeleteGiven(r.Timestamp+1, r.Driver))
	assert.False(t, svc.DeleteGiven(r.Timestamp, "Uther-Silvermoon"))
	assert.True(t, svc.DeleteGiven(r.Timestamp, r.Driver))
	assert.Empty(t, store.GetAllGivenRatings())
}

func TestDeleteReceived(t *testing.T) {
	store := models.NewRatingStore()
	svc := newRatingService(store)

	store.UpsertReceived(localIdentity, &models.Rating{
		Driver:    localIdentity,
		Reviewer:  "Jaina-Proudmoore",
		Score:     4,
		Timestamp: 500,
	})

	assert.False(t, svc.DeleteReceived(999, "Jaina-Proudmoore"))
	assert.True(t, svc.DeleteReceived(500, "Jaina-Proudmoore"))
	assert.Empty(t, svc.ReceivedRatings(""))
}

func TestGivenRatings_NewestFirst(t *testing.T) {
	store := models.NewRatingStore()
	svc := newRatingService(store)

	_, err := svc.SubmitRating("Aaa-Draenor", 3, "")
	require.NoError(t, err)
	_, err = svc.SubmitRating("Bbb-Draenor", 4, "")
	require.NoError(t, err)
	_, err = svc.SubmitRating("Ccc-Draenor", 5, "")
	require.NoError(t, err)

	given := svc.GivenRatings()
	require.Len(t, given, 3)
	assert.Equal(t, models.Identity("Ccc-Draenor"), given[0].Driver)
	assert.Equal(t, models.Identity("Bbb-Draenor"), given[1].Driver)
	assert.Equal(t, models.Identity("Aaa-Draenor"), given[2].Driver)
}

func TestSummary_MeanAndCount(t *testing.T) {
	store := models.NewRatingStore()
	svc := newRatingService(store)

	scores := map[models.Identity]int{
		"Jaina-Proudmoore": 5,
		"Uther-Silvermoon": 4,
		"Arthas-Draenor":   3,
	}
	ts := int64(100)
	for reviewer, score := range scores {
		ts++
		store.UpsertReceived(localIdentity, &models.Rating{
			Driver:    localIdentity,
			Reviewer:  reviewer,
			Score:     score,
			Timestamp: ts,
		})
	}

	avg, count := svc.Summary("")
	assert.Equal(t, 3, count)
	assert.InDelta(t, 4.0, avg, 1e-9)
}

func TestSummary_NothingReceived(t *testing.T) {
	svc := newRatingService(models.NewRatingStore())

	avg, count := svc.Summary("Jaina-Proudmoore")
	assert.Zero(t, avg)
	assert.Zero(t, count)
}

func TestReceivedRatings_DefaultsToLocalIdentity(t *testing.T) {
	store := models.NewRatingStore()
	svc := newRatingService(store)

	store.UpsertReceived(localIdentity, &models.Rating{
		Driver:    localIdentity,
		Reviewer:  "Jaina-Proudmoore",
		Score:     5,
		Timestamp: 100,
	})

	require.Len(t, svc.ReceivedRatings(""), 1)
	assert.Empty(t, svc.ReceivedRatings("Uther-Silvermoon"))
}

func TestMeta_RoundTrip(t *testing.T) {
	svc := newRatingService(models.NewRatingStore())

	_, ok := svc.Meta("Jaina-Proudmoore")
	assert.False(t, ok)

	svc.RecordMeta("Jaina-Proudmoore", &models.ParticipantMeta{
		Class:   "Mage",
		Faction: "Alliance",
		Race:    "Human",
		Level:   60,
	})

	meta, ok := svc.Meta("Jaina-Proudmoore")
	require.True(t, ok)
	assert.Equal(t, "Mage", meta.Class)
	assert.Equal(t, 60, meta.Level)
}

func TestLocalIdentity(t *testing.T) {
	svc := newRatingService(models.NewRatingStore())
	assert.Equal(t, localIdentity, svc.LocalIdentity())
}
