package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"repx/internal/codec"
	"repx/internal/models"
	"repx/internal/providers"
	"repx/internal/structures"
	"repx/internal/transport"
)

const (
	envelopeKindReview = "review"

	// maxCommentBytes caps the comment after one truncation pass.
	maxCommentBytes = 100
	ellipsis        = "..."
)

// ErrUndeliverable means the encoded review exceeds the frame cap even
// after comment truncation. The local store already holds the rating.
var ErrUndeliverable = errors.New("review does not fit a frame")

type SyncServiceInterface interface {
	PrepareOutgoing(r *models.Rating) (string, error)
	Deliver(r *models.Rating) error
	HandleFrame(prefix, frame string, sender models.Identity)
	Run(ctx context.Context)
}

// SyncService frames outgoing reviews and routes inbound frames. Run is
// the sole consumer of transport events, so everything downstream of
// HandleFrame executes on one goroutine.
type SyncService struct {
	transport transport.TransportInterface
	reconcile ReconcileServiceInterface
	rating    RatingServiceInterface
	identity  models.Identity
	prefix    string
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewSyncService(
	tr transport.TransportInterface,
	reconcile ReconcileServiceInterface,
	rating RatingServiceInterface,
	identity models.Identity,
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) SyncServiceInterface {
	return &SyncService{
		transport: tr,
		reconcile: reconcile,
		rating:    rating,
		identity:  identity,
		prefix:    conf.Sync.Prefix,
		logger:    logger,
		metrics:   metrics,
	}
}

func ratingToTable(r *models.Rating) codec.Table {
	t := codec.Table{
		"driver":    string(r.Driver),
		"rating":    int64(r.Score),
		"timestamp": r.Timestamp,
	}
	if r.DriverName != "" {
		t["driverName"] = r.DriverName
	}
	if !r.Reviewer.IsEmpty() {
		t["reviewer"] = string(r.Reviewer)
	}
	if r.Comment != "" {
		t["comment"] = r.Comment
	}
	return t
}

func reviewEnvelope(r *models.Rating) codec.Table {
	return codec.Table{
		"type":   envelopeKindReview,
		"review": ratingToTable(r),
	}
}

// truncateComment cuts s to at most maxCommentBytes at a rune boundary
// and appends the ellipsis marker. Callers check len(s) first.
func truncateComment(s string) string {
	cut := maxCommentBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

// PrepareOutgoing encodes r inside the review envelope. Oversize frames
// get exactly one retry with the comment truncated; a second failure is
// terminal.
func (s *SyncService) PrepareOutgoing(r *models.Rating) (string, error) {
	frame, err := codec.Encode(reviewEnvelope(r))
	if err != nil {
		return "", err
	}
	if len(frame) <= transport.MaxFrameBytes {
		return frame, nil
	}

	if len(r.Comment) > maxCommentBytes {
		rc := *r
		rc.Comment = truncateComment(r.Comment)
		frame, err = codec.Encode(reviewEnvelope(&rc))
		if err != nil {
			return "", err
		}
		if len(frame) <= transport.MaxFrameBytes {
			return frame, nil
		}
	}

	s.metrics.IncUndeliverable()
	return "", ErrUndeliverable
}

// Deliver transmits r to its target when that target is currently on
// the roster. An absent target is deferred delivery, not a failure; the
// peer picks the rating up next time both sides are co-located.
func (s *SyncService) Deliver(r *models.Rating) error {
	if !s.onRoster(r.Driver) {
		s.logger.Debugf(providers.TypeSync, "%s not co-located, delivery deferred", r.Driver)
		return nil
	}

	frame, err := s.PrepareOutgoing(r)
	if err != nil {
		return err
	}

	if s.transport.Send(s.prefix, frame, s.transport.Scope()) {
		s.metrics.IncFramesOut()
	}
	return nil
}

func (s *SyncService) onRoster(id models.Identity) bool {
	for _, e := range s.transport.CurrentRoster() {
		if e.Identity == id {
			return true
		}
	}
	return false
}

// HandleFrame routes one inbound frame. Foreign prefixes, self-echoes,
// undecodable payloads and unknown envelope kinds are all dropped
// without further effect.
func (s *SyncService) HandleFrame(prefix, frame string, sender models.Identity) {
	s.metrics.IncFramesIn()

	if prefix != s.prefix {
		s.metrics.IncFramesDropped("prefix")
		return
	}
	if sender == s.identity {
		s.metrics.IncFramesDropped("self")
		return
	}

	value, err := codec.Decode(frame)
	if err != nil {
		s.logger.Debugf(providers.TypeSync, "undecodable frame from %s: %s", sender, err)
		s.metrics.IncFramesDropped("decode")
		return
	}

	env, ok := value.(codec.Table)
	if !ok {
		s.metrics.IncFramesDropped("shape")
		return
	}

	kind, _ := env.String("type")
	switch kind {
	case envelopeKindReview:
		review, ok := env.Table("review")
		if !ok {
			s.metrics.IncFramesDropped("shape")
			return
		}
		s.reconcile.Receive(review, sender)
	default:
		s.metrics.IncFramesDropped("kind")
	}
}

// Run pumps transport events until ctx ends or the transport closes.
func (s *SyncService) Run(ctx context.Context) {
	s.logger.Infof(providers.TypeSync, "sync loop started, prefix %q", s.prefix)
	for {
		select {
		case <-ctx.Done():
			s.logger.Infof(providers.TypeSync, "sync loop stopped")
			return
		case f, ok := <-s.transport.Inbound():
			if !ok {
				s.logger.Infof(providers.TypeSync, "transport closed, sync loop stopped")
				return
			}
			s.HandleFrame(f.Prefix, f.Body, f.Sender)
		case _, ok := <-s.transport.RosterEvents():
			if !ok {
				s.logger.Infof(providers.TypeSync, "transport closed, sync loop stopped")
				return
			}
			s.captureRosterMeta()
		}
	}
}

// captureRosterMeta opportunistically caches profile data for whoever
// is co-located right now. Lookups are best-effort; absence is normal.
func (s *SyncService) captureRosterMeta() {
	for _, e := range s.transport.CurrentRoster() {
		if e.Identity == s.identity {
			continue
		}
		meta, err := s.transport.LiveLookup(e.Identity)
		if err != nil {
			continue
		}
		s.rating.RecordMeta(e.Identity, meta)
	}
}
