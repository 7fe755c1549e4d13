package persistence

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"repx/internal/models"
	"repx/internal/persistence/interfaces"
	"repx/internal/providers"
)

type FileManager struct {
	store      *models.RatingStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store *models.RatingStore, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	storage := f.store.Snapshot()

	jsonData, err := json.Marshal(storage)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	// Try current format (versioned envelope)
	var storage models.Storage
	if err := json.Unmarshal(decompressedData, &storage); err == nil && storage.Version == models.StorageVersion {
		f.store.Restore(&storage)
		return nil
	}

	// Try old format v1 (no version field, list-valued given collection)
	f.logger.Warnf(providers.TypeApp, "Inconsistent DB found, try to migrate from old data format")
	var oldStorage models.StorageV1
	if err := json.Unmarshal(decompressedData, &oldStorage); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	if oldStorage.Received == nil && oldStorage.Given == nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return fmt.Errorf("unrecognized storage format in %s", fileName)
	}
	f.logger.Warnf(providers.TypeApp, "Migration from v1 format successful")
	f.store.Restore(oldStorage.Migrate())

	return nil
}
