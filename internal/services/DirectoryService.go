package services

import (
	"errors"
	"strings"

	"repx/internal/models"
	"repx/internal/providers"
	"repx/internal/transport"
)

var ErrNoCriteria = errors.New("no search criteria")

const (
	// rosterMatchTarget is the roster match count below which the known
	// participant caches are consulted too.
	rosterMatchTarget = 5
	maxCandidates     = 10
)

const (
	SourceRoster      = "roster"
	SourceHistory     = "history"
	SourceSynthesized = "synthesized"
)

// Candidate is one addressable search result.
type Candidate struct {
	Identity    models.Identity `json:"identity"`
	DisplayName string          `json:"displayName"`
	Source      string          `json:"source"`
}

type DirectoryServiceInterface interface {
	Search(token string) ([]Candidate, error)
}

// DirectoryService resolves a typed name fragment to participants,
// co-located peers first, then everyone remembered from past ratings
// and searches.
type DirectoryService struct {
	store     *models.RatingStore
	transport transport.TransportInterface
	identity  models.Identity
	logger    providers.Logger
}

func NewDirectoryService(store *models.RatingStore, tr transport.TransportInterface, identity models.Identity, logger providers.Logger) DirectoryServiceInterface {
	return &DirectoryService{
		store:     store,
		transport: tr,
		identity:  identity,
		logger:    logger,
	}
}

// Search never returns an empty result for a usable token: when neither
// the roster nor the caches match, it synthesizes an exact-name
// candidate on the local realm so an absent participant can still be
// rated by name.
func (d *DirectoryService) Search(token string) ([]Candidate, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return nil, ErrNoCriteria
	}

	var out []Candidate
	seen := make(map[models.Identity]bool)

	for _, e := range d.transport.CurrentRoster() {
		if seen[e.Identity] || !e.Identity.NameContainsFold(token) {
			continue
		}
		seen[e.Identity] = true
		out = append(out, Candidate{
			Identity:    e.Identity,
			DisplayName: e.Identity.Name(),
			Source:      SourceRoster,
		})
	}

	if len(out) < rosterMatchTarget {
		for _, k := range d.store.KnownParticipants() {
			if len(out) >= maxCandidates {
				break
			}
			if seen[k.Identity] || !k.Identity.NameContainsFold(token) {
				continue
			}
			seen[k.Identity] = true
			out = append(out, Candidate{
				Identity:    k.Identity,
				DisplayName: k.Identity.Name(),
				Source:      SourceHistory,
			})
		}
	}

	if len(out) == 0 {
		name := models.CapitalizeName(token)
		id := models.MakeIdentity(name, d.identity.Realm())
		d.logger.Debugf(providers.TypeApp, "search %q matched nothing, synthesized %s", token, id)
		out = append(out, Candidate{
			Identity:    id,
			DisplayName: name,
			Source:      SourceSynthesized,
		})
	}

	return out, nil
}
