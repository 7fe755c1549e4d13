package models

// StorageVersion is the current persistence format. Version 1 files
// (no version field, list-valued given collection) still load; the
// file manager migrates them forward on the next save.
const StorageVersion = 2

// Storage is the persisted snapshot of a RatingStore. Every
// sub-collection is optional on load.
type Storage struct {
	Version      int                          `json:"version"`
	Received     map[Identity][]*Rating       `json:"received,omitempty"`
	Given        map[Identity]*Rating         `json:"given,omitempty"`
	ReviewerSeen map[Identity]int64           `json:"reviewerSeen,omitempty"`
	SearchSeen   map[Identity]int64           `json:"searchSeen,omitempty"`
	Meta         map[Identity]*ParticipantMeta `json:"meta,omitempty"`
}

// StorageV1 is the legacy on-disk shape: no version field and the given
// collection stored as single-element lists keyed by target.
type StorageV1 struct {
	Received map[Identity][]*Rating `json:"received"`
	Given    map[Identity][]*Rating `json:"given"`
}

// Migrate lifts a V1 snapshot into the current format. When a legacy
// given list holds several entries the newest one wins.
func (v1 *StorageV1) Migrate() *Storage {
	st := &Storage{
		Version:  StorageVersion,
		Received: v1.Received,
		Given:    make(map[Identity]*Rating, len(v1.Given)),
	}
	for target, list := range v1.Given {
		var newest *Rating
		for _, r := range list {
			if r == nil {
				continue
			}
			if newest == nil || r.Timestamp >= newest.Timestamp {
				newest = r
			}
		}
		if newest != nil {
			st.Given[target] = newest
		}
	}
	return st
}
