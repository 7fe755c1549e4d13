package testutil

import (
	"sync"
	"time"

	"repx/internal/models"
	"repx/internal/providers"
	"repx/internal/transport"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts
// every signal it receives.
type MockMetrics struct {
	mu                  sync.Mutex
	Requests            int
	RequestObservations int
	CacheHits           int
	CacheMisses         int
	PersistObservations int
	FramesIn            int
	FramesOut           int
	FramesDropped       map[string]int
	RatingsNew          int
	RatingsUpdated      int
	Undeliverable       int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestObservations++
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistObservations++
}

func (m *MockMetrics) IncFramesIn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FramesIn++
}

func (m *MockMetrics) IncFramesOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FramesOut++
}

func (m *MockMetrics) IncFramesDropped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FramesDropped == nil {
		m.FramesDropped = make(map[string]int)
	}
	m.FramesDropped[reason]++
}

func (m *MockMetrics) IncRatingsNew() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RatingsNew++
}

func (m *MockMetrics) IncRatingsUpdated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RatingsUpdated++
}

func (m *MockMetrics) IncUndeliverable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Undeliverable++
}

// Dropped returns the drop count recorded for reason.
func (m *MockMetrics) Dropped(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FramesDropped[reason]
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// SentFrame records one Send call on a LoopTransport.
type SentFrame struct {
	Prefix string
	Frame  string
	Scope  string
}

// LoopTransport implements transport.TransportInterface in memory. Sent
// frames are recorded, inbound frames and roster events are injected by
// the test. The 255-byte cap is enforced like the real transport does.
type LoopTransport struct {
	mu        sync.Mutex
	scope     string
	sent      []SentFrame
	roster    []transport.RosterEntry
	profiles  map[models.Identity]*models.ParticipantMeta
	published []*models.ParticipantMeta
	inbound   chan transport.Frame
	events    chan struct{}
	closeOnce sync.Once

	// FailSend forces Send to report a transport failure.
	FailSend bool
}

func NewLoopTransport(scope string) *LoopTransport {
	return &LoopTransport{
		scope:    scope,
		profiles: make(map[models.Identity]*models.ParticipantMeta),
		inbound:  make(chan transport.Frame, 16),
		events:   make(chan struct{}, 1),
	}
}

func (l *LoopTransport) Send(prefix, frame, scope string) bool {
	if len(frame) > transport.MaxFrameBytes {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailSend {
		return false
	}
	l.sent = append(l.sent, SentFrame{Prefix: prefix, Frame: frame, Scope: scope})
	return true
}

// SentFrames returns a copy of everything sent so far.
func (l *LoopTransport) SentFrames() []SentFrame {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SentFrame, len(l.sent))
	copy(out, l.sent)
	return out
}

// Inject delivers a frame to whoever reads Inbound.
func (l *LoopTransport) Inject(prefix, body string, sender models.Identity) {
	l.inbound <- transport.Frame{Prefix: prefix, Body: body, Sender: sender}
}

// SetRoster replaces the roster with the given identities, all seen now.
func (l *LoopTransport) SetRoster(ids ...models.Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().Unix()
	l.roster = l.roster[:0]
	for _, id := range ids {
		l.roster = append(l.roster, transport.RosterEntry{Identity: id, LastSeen: now})
	}
}

// SetProfile makes a profile visible to LiveLookup.
func (l *LoopTransport) SetProfile(id models.Identity, meta *models.ParticipantMeta) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profiles[id] = meta
}

// EmitRosterEvent signals a roster change without blocking.
func (l *LoopTransport) EmitRosterEvent() {
	select {
	case l.events <- struct{}{}:
	default:
	}
}

// Published returns every profile passed to PublishProfile.
func (l *LoopTransport) Published() []*models.ParticipantMeta {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*models.ParticipantMeta, len(l.published))
	copy(out, l.published)
	return out
}

func (l *LoopTransport) Inbound() <-chan transport.Frame { return l.inbound }

func (l *LoopTransport) RosterEvents() <-chan struct{} { return l.events }

func (l *LoopTransport) CurrentRoster() []transport.RosterEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]transport.RosterEntry, len(l.roster))
	copy(out, l.roster)
	return out
}

func (l *LoopTransport) Scope() string { return l.scope }

func (l *LoopTransport) LiveLookup(id models.Identity) (*models.ParticipantMeta, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	meta, ok := l.profiles[id]
	if !ok {
		return nil, transport.ErrNoProfile
	}
	return meta, nil
}

func (l *LoopTransport) PublishProfile(meta *models.ParticipantMeta) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.published = append(l.published, meta)
	return nil
}

func (l *LoopTransport) Close() error {
	l.closeOnce.Do(func() {
		close(l.inbound)
		close(l.events)
	})
	return nil
}
