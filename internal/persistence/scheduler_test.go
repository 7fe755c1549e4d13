package persistence

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repx/internal/models"
	"repx/internal/structures"
	"repx/internal/testutil"
)

func testConfig(filePath string) *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{
			FilePath:     filePath,
			SaveInterval: 1 * time.Second,
		},
	}
}

func newTestScheduler(conf *structures.Config) (*Scheduler, *models.RatingStore, *testutil.MockMetrics) {
	store := models.NewRatingStore()
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(&testutil.MockCompressor{}, store, logger)
	s := NewScheduler(conf, logger, fm, metrics).(*Scheduler)
	return s, store, metrics
}

func TestScheduler_Restore_Success(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restore.dat")

	storage := models.Storage{
		Version: models.StorageVersion,
		Received: map[models.Identity][]*models.Rating{
			"Thrall-Draenor": {
				{Driver: "Thrall-Draenor", Reviewer: "Jaina-Proudmoore", Score: 4, Timestamp: 100},
			},
		},
	}
	jsonData, _ := json.Marshal(storage)
	require.NoError(t, os.WriteFile(path, jsonData, 0644))

	s, store, _ := newTestScheduler(testConfig(path))
	require.NoError(t, s.Restore())

	received := store.GetReceivedRatings("Thrall-Draenor")
	require.Len(t, received, 1)
	assert.Equal(t, 4, received[0].Score)
}

func TestScheduler_Restore_FileNotExist(t *testing.T) {
	s, _, _ := newTestScheduler(testConfig("/nonexistent/ratings.dat"))
	assert.NoError(t, s.Restore())
}

func TestScheduler_Restore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	s, _, _ := newTestScheduler(testConfig(path))
	assert.Error(t, s.Restore())
}

func TestScheduler_Persist_Success(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.dat")

	s, store, metrics := newTestScheduler(testConfig(path))
	store.AddGivenRating("Jaina-Proudmoore", &models.Rating{
		Driver: "Jaina-Proudmoore", Reviewer: "Thrall-Draenor", Score: 5, Timestamp: 100,
	})

	require.NoError(t, s.Persist())

	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, metrics.PersistObservations)
}

func TestScheduler_Persist_WriteError(t *testing.T) {
	store := models.NewRatingStore()
	logger := &testutil.MockLogger{}
	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress error")
		},
	}
	fm := NewFileManager(comp, store, logger)
	s := NewScheduler(testConfig("/tmp/ratings.dat"), logger, fm, &testutil.MockMetrics{})

	assert.Error(t, s.Persist())
}

func TestScheduler_StopNilCron(t *testing.T) {
	s, _, _ := newTestScheduler(testConfig("/tmp/ratings.dat"))
	// Should not panic with nil cron
	s.Stop()
}

func TestScheduler_InitAndStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lifecycle.dat")

	s, _, _ := newTestScheduler(testConfig(path))
	s.Init()
	// Give the cron a moment to start
	time.Sleep(50 * time.Millisecond)
	s.Stop()
}

func TestScheduler_PersistRestoreRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cycle.dat")

	s, store, _ := newTestScheduler(testConfig(path))
	store.UpsertReceived("Thrall-Draenor", &models.Rating{
		Driver: "Thrall-Draenor", Reviewer: "Jaina-Proudmoore", Score: 5, Timestamp: 100,
	})
	require.NoError(t, s.Persist())

	s2, store2, _ := newTestScheduler(testConfig(path))
	require.NoError(t, s2.Restore())

	received := store2.GetReceivedRatings("Thrall-Draenor")
	require.Len(t, received, 1)
	assert.Equal(t, models.Identity("Jaina-Proudmoore"), received[0].Reviewer)
}
