package persistence

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repx/internal/models"
	"repx/internal/testutil"
)

func newTestFileManager(compressor *testutil.MockCompressor) (*FileManager, *models.RatingStore) {
	store := models.NewRatingStore()
	logger := &testutil.MockLogger{}
	fm := NewFileManager(compressor, store, logger)
	return fm, store
}

func seedStore(store *models.RatingStore) {
	store.AddGivenRating("Jaina-Proudmoore", &models.Rating{
		Driver:     "Jaina-Proudmoore",
		DriverName: "Jaina",
		Reviewer:   "Thrall-Draenor",
		Score:      5,
		Comment:    "clutch heals",
		Timestamp:  1000,
	})
	store.UpsertReceived("Thrall-Draenor", &models.Rating{
		Driver:    "Thrall-Draenor",
		Reviewer:  "Uther-Silvermoon",
		Score:     4,
		Timestamp: 1001,
	})
	store.StoreReviewerSeen("Uther-Silvermoon", 1001)
	store.StoreParticipantMeta("Jaina-Proudmoore", &models.ParticipantMeta{Class: "Mage", Level: 60})
}

func TestFileManager_SaveToFile_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ratings.dat")

	fm, store := newTestFileManager(&testutil.MockCompressor{})
	seedStore(store)

	err := fm.SaveToFile(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// Temp file should not exist
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_LoadFromFile_FileNotExist(t *testing.T) {
	fm, _ := newTestFileManager(&testutil.MockCompressor{})
	err := fm.LoadFromFile("/nonexistent/path/ratings.dat")
	assert.NoError(t, err) // not an error, just no data
}

func TestFileManager_LoadFromFile_CurrentFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v2.dat")

	storage := models.Storage{
		Version: models.StorageVersion,
		Received: map[models.Identity][]*models.Rating{
			"Thrall-Draenor": {
				{Driver: "Thrall-Draenor", Reviewer: "Jaina-Proudmoore", Score: 5, Timestamp: 100},
			},
		},
		Given: map[models.Identity]*models.Rating{
			"Jaina-Proudmoore": {Driver: "Jaina-Proudmoore", Reviewer: "Thrall-Draenor", Score: 4, Timestamp: 101},
		},
		ReviewerSeen: map[models.Identity]int64{"Jaina-Proudmoore": 100},
	}
	jsonData, _ := json.Marshal(storage)
	require.NoError(t, os.WriteFile(path, jsonData, 0644))

	fm, store := newTestFileManager(&testutil.MockCompressor{}) // identity compressor
	require.NoError(t, fm.LoadFromFile(path))

	received := store.GetReceivedRatings("Thrall-Draenor")
	require.Len(t, received, 1)
	assert.Equal(t, 5, received[0].Score)

	given := store.GetAllGivenRatings()
	require.Len(t, given, 1)
	assert.Equal(t, models.Identity("Jaina-Proudmoore"), given[0].Driver)
}

func TestFileManager_LoadFromFile_V1Format(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v1.dat")

	// Legacy files had no version field and kept given ratings in lists.
	v1 := []byte(`{
		"received": {
			"Thrall-Draenor": [
				{"driver":"Thrall-Draenor","reviewer":"Jaina-Proudmoore","rating":5,"timestamp":100}
			]
		},
		"given": {
			"Uther-Silvermoon": [
				{"driver":"Uther-Silvermoon","reviewer":"Thrall-Draenor","rating":2,"timestamp":50},
				{"driver":"Uther-Silvermoon","reviewer":"Thrall-Draenor","rating":4,"timestamp":90}
			]
		}
	}`)
	require.NoError(t, os.WriteFile(path, v1, 0644))

	fm, store := newTestFileManager(&testutil.MockCompressor{})
	require.NoError(t, fm.LoadFromFile(path))

	received := store.GetReceivedRatings("Thrall-Draenor")
	require.Len(t, received, 1)
	assert.Equal(t, 5, received[0].Score)

	// Newest entry of the legacy list wins
	given := store.GetAllGivenRatings()
	require.Len(t, given, 1)
	assert.Equal(t, 4, given[0].Score)
	assert.Equal(t, int64(90), given[0].Timestamp)
}

func TestFileManager_LoadFromFile_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	fm, _ := newTestFileManager(&testutil.MockCompressor{})
	err := fm.LoadFromFile(path)
	assert.Error(t, err)
}

func TestFileManager_LoadFromFile_UnrecognizedShape(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odd.dat")
	require.NoError(t, os.WriteFile(path, []byte(`{"foo": 1}`), 0644))

	fm, _ := newTestFileManager(&testutil.MockCompressor{})
	err := fm.LoadFromFile(path)
	assert.Error(t, err)
}

func TestFileManager_CompressError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "err.dat")

	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress failed")
		},
	}
	fm, store := newTestFileManager(comp)
	seedStore(store)

	err := fm.SaveToFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "compress failed")
}

func TestFileManager_DecompressError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dec.dat")
	require.NoError(t, os.WriteFile(path, []byte("some data"), 0644))

	comp := &testutil.MockCompressor{
		DecompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("decompress failed")
		},
	}
	fm, _ := newTestFileManager(comp)

	err := fm.LoadFromFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decompress failed")
}

func TestFileManager_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.dat")

	comp := &testutil.MockCompressor{}
	fm, store := newTestFileManager(comp)
	seedStore(store)
	require.NoError(t, fm.SaveToFile(path))

	fm2, store2 := newTestFileManager(comp)
	require.NoError(t, fm2.LoadFromFile(path))

	assert.Equal(t, store.Counts(), store2.Counts())

	received := store2.GetReceivedRatings("Thrall-Draenor")
	require.Len(t, received, 1)
	assert.Equal(t, models.Identity("Uther-Silvermoon"), received[0].Reviewer)

	meta, ok := store2.GetParticipantMeta("Jaina-Proudmoore")
	require.True(t, ok)
	assert.Equal(t, "Mage", meta.Class)
}

func TestFileManager_EmptyStoreRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.dat")

	comp := &testutil.MockCompressor{}
	fm, _ := newTestFileManager(comp)
	require.NoError(t, fm.SaveToFile(path))

	fm2, store2 := newTestFileManager(comp)
	require.NoError(t, fm2.LoadFromFile(path))

	counts := store2.Counts()
	assert.Zero(t, counts.Received)
	assert.Zero(t, counts.Given)
}
