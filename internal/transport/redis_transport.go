package transport

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"

	"repx/internal/models"
	"repx/internal/providers"
	"repx/internal/structures"
)

const (
	defaultHeartbeat = 5 * time.Second
	defaultScope     = "default"
	opTimeout        = 5 * time.Second
	inboundQueueSize = 256
)

// wireEnvelope is the pub/sub payload wrapping one frame.
type wireEnvelope struct {
	Prefix string `json:"prefix"`
	Sender string `json:"sender"`
	Frame  string `json:"frame"`
}

func frameChannel(scope string) string { return "repx.frames." + scope }
func rosterKey(scope string) string    { return "repx.roster." + scope }

func profileKey(id models.Identity) string { return "repx.profile." + string(id) }

// RedisTransport broadcasts frames over pub/sub and keeps a heartbeat
// scored roster of co-located participants in a sorted set.
type RedisTransport struct {
	client   *redis.Client
	pubsub   *redis.PubSub
	identity models.Identity
	scope    string
	logger   providers.Logger

	heartbeat  time.Duration
	staleAfter time.Duration

	inbound      chan Frame
	rosterEvents chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisTransport(conf *structures.Config, identity models.Identity, logger providers.Logger) (TransportInterface, error) {
	if !conf.Transport.Enabled {
		logger.Infof(providers.TypeApp, "Transport disabled, running detached")
		return NewNoopTransport(), nil
	}

	heartbeat := conf.Transport.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	staleAfter := conf.Transport.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 3 * heartbeat
	}
	scope := conf.Transport.Scope
	if scope == "" {
		scope = defaultScope
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Transport.Addr,
		Password: conf.Transport.Password,
		DB:       conf.Transport.DB,
	})

	pingCtx, cancelPing := context.WithTimeout(context.Background(), opTimeout)
	defer cancelPing()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("transport: redis ping failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	t := &RedisTransport{
		client:       client,
		pubsub:       client.Subscribe(ctx, frameChannel(scope)),
		identity:     identity,
		scope:        scope,
		logger:       logger,
		heartbeat:    heartbeat,
		staleAfter:   staleAfter,
		inbound:      make(chan Frame, inboundQueueSize),
		rosterEvents: make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
	}

	t.beat()

	t.wg.Add(2)
	go t.readLoop()
	go t.heartbeatLoop()

	logger.Infof(providers.TypeApp, "Transport connected to %s, scope %q", conf.Transport.Addr, scope)

	return t, nil
}

func (t *RedisTransport) Send(prefix, frame, scope string) bool {
	if len(frame) > MaxFrameBytes {
		t.logger.Warnf(providers.TypeSync, "frame of %d bytes exceeds cap %d, dropped", len(frame), MaxFrameBytes)
		return false
	}

	payload, err := json.Marshal(wireEnvelope{
		Prefix: prefix,
		Sender: string(t.identity),
		Frame:  frame,
	})
	if err != nil {
		t.logger.Errorf(providers.TypeSync, "envelope marshal failed: %s", err)
		return false
	}

	ctx, cancel := context.WithTimeout(t.ctx, opTimeout)
	defer cancel()
	if err := t.client.Publish(ctx, frameChannel(scope), payload).Err(); err != nil {
		t.logger.Warnf(providers.TypeSync, "publish failed: %s", err)
		return false
	}
	return true
}

func (t *RedisTransport) Inbound() <-chan Frame {
	return t.inbound
}

func (t *RedisTransport) RosterEvents() <-chan struct{} {
	return t.rosterEvents
}

func (t *RedisTransport) Scope() string {
	return t.scope
}

func (t *RedisTransport) CurrentRoster() []RosterEntry {
	ctx, cancel := context.WithTimeout(t.ctx, opTimeout)
	defer cancel()

	min := strconv.FormatInt(time.Now().Add(-t.staleAfter).Unix(), 10)
	members, err := t.client.ZRangeByScoreWithScores(ctx, rosterKey(t.scope), &redis.ZRangeBy{
		Min: min,
		Max: "+inf",
	}).Result()
	if err != nil {
		t.logger.Warnf(providers.TypeSync, "roster read failed: %s", err)
		return nil
	}

	entries := make([]RosterEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, RosterEntry{
			Identity: models.Identity(cast.ToString(m.Member)),
			LastSeen: int64(m.Score),
		})
	}
	return entries
}

func (t *RedisTransport) LiveLookup(id models.Identity) (*models.ParticipantMeta, error) {
	ctx, cancel := context.WithTimeout(t.ctx, opTimeout)
	defer cancel()

	fields, err := t.client.HGetAll(ctx, profileKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNoProfile
	}

	return &models.ParticipantMeta{
		Class:     fields["class"],
		Faction:   fields["faction"],
		Race:      fields["race"],
		Level:     cast.ToInt(fields["level"]),
		UpdatedAt: cast.ToInt64(fields["updatedAt"]),
	}, nil
}

func (t *RedisTransport) PublishProfile(meta *models.ParticipantMeta) error {
	ctx, cancel := context.WithTimeout(t.ctx, opTimeout)
	defer cancel()

	return t.client.HSet(ctx, profileKey(t.identity), map[string]interface{}{
		"class":     meta.Class,
		"faction":   meta.Faction,
		"race":      meta.Race,
		"level":     meta.Level,
		"updatedAt": meta.UpdatedAt,
	}).Err()
}

func (t *RedisTransport) Close() error {
	t.cancel()
	err := t.pubsub.Close()
	t.wg.Wait()
	if cerr := t.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func (t *RedisTransport) readLoop() {
	defer t.wg.Done()
	defer close(t.inbound)

	for msg := range t.pubsub.Channel() {
		var env wireEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			t.logger.Debugf(providers.TypeSync, "undecodable envelope dropped: %s", err)
			continue
		}
		frame := Frame{
			Prefix: env.Prefix,
			Body:   env.Frame,
			Sender: models.Identity(env.Sender),
		}
		select {
		case t.inbound <- frame:
		default:
			t.logger.Warnf(providers.TypeSync, "inbound queue full, frame from %s dropped", env.Sender)
		}
	}
}

func (t *RedisTransport) heartbeatLoop() {
	defer t.wg.Done()
	defer close(t.rosterEvents)

	ticker := time.NewTicker(t.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			t.beat()
		}
	}
}

// beat refreshes this instance's presence, prunes entries older than
// staleAfter and signals a roster change.
func (t *RedisTransport) beat() {
	ctx, cancel := context.WithTimeout(t.ctx, opTimeout)
	defer cancel()

	now := time.Now().Unix()
	key := rosterKey(t.scope)

	if err := t.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(now),
		Member: string(t.identity),
	}).Err(); err != nil {
		t.logger.Warnf(providers.TypeSync, "heartbeat failed: %s", err)
		return
	}

	cutoff := strconv.FormatInt(now-int64(t.staleAfter.Seconds()), 10)
	if err := t.client.ZRemRangeByScore(ctx, key, "-inf", "("+cutoff).Err(); err != nil {
		t.logger.Debugf(providers.TypeSync, "roster prune failed: %s", err)
	}

	select {
	case t.rosterEvents <- struct{}{}:
	default:
	}
}
