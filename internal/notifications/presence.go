package notifications

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineSetKey  = "ws:online_users"
	presenceLastSeenKeyNS = "ws:last_seen:"
	presenceLastSeenTTL   = 90 * time.Second
	presenceOfflineGrace  = 5 * time.Second
	presenceReaperEvery   = 60 * time.Second
)

// PresenceConfig controls presence tracking and cleanup behavior.
type PresenceConfig struct {
	LastSeenTTL        time.Duration
	OfflineGracePeriod time.Duration
	ReaperInterval     time.Duration
	OnUserOnline       func(userID uint)
	OnUserOffline      func(userID uint)
}

// Presence tracks which users have live connections, mirrors the state in
// Redis so every instance sees it, and emits online/offline transitions with
// an offline grace window to absorb quick reconnects.
type Presence struct {
	rdb *redis.Client

	mu              sync.RWMutex
	localConnCounts map[uint]int
	offlineTimers   map[uint]*time.Timer
	offlineNotified map[uint]bool

	lastSeenTTL    time.Duration
	offlineGrace   time.Duration
	reaperInterval time.Duration

	onUserOnline  func(userID uint)
	onUserOffline func(userID uint)

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPresence creates a tracker and starts a Redis reaper when Redis is
// available.
func NewPresence(rdb *redis.Client, cfg PresenceConfig) *Presence {
	p := &Presence{
		rdb:             rdb,
		localConnCounts: make(map[uint]int),
		offlineTimers:   make(map[uint]*time.Timer),
		offlineNotified: make(map[uint]bool),
		lastSeenTTL:     presenceLastSeenTTL,
		offlineGrace:    presenceOfflineGrace,
		reaperInterval:  presenceReaperEvery,
		onUserOnline:    cfg.OnUserOnline,
		onUserOffline:   cfg.OnUserOffline,
		stopCh:          make(chan struct{}),
	}
	if cfg.LastSeenTTL > 0 {
		p.lastSeenTTL = cfg.LastSeenTTL
	}
	if cfg.OfflineGracePeriod > 0 {
		p.offlineGrace = cfg.OfflineGracePeriod
	}
	if cfg.ReaperInterval > 0 {
		p.reaperInterval = cfg.ReaperInterval
	}

	if p.rdb != nil && p.reaperInterval > 0 {
		go p.reaperLoop()
	}

	return p
}

func (p *Presence) SetCallbacks(onOnline, onOffline func(userID uint)) {
	p.mu.Lock()
	p.onUserOnline = onOnline
	p.onUserOffline = onOffline
	p.mu.Unlock()
}

func (p *Presence) SetOfflineGracePeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.offlineGrace = d
	p.mu.Unlock()
}

func (p *Presence) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.mu.Lock()
		for userID, timer := range p.offlineTimers {
			if timer != nil {
				timer.Stop()
			}
			delete(p.offlineTimers, userID)
		}
		p.mu.Unlock()
	})
}

func (p *Presence) Register(ctx context.Context, userID uint) {
	wasOnline := p.IsOnline(ctx, userID)

	p.mu.Lock()
	if t, ok := p.offlineTimers[userID]; ok {
		t.Stop()
		delete(p.offlineTimers, userID)
	}
	p.localConnCounts[userID]++
	p.offlineNotified[userID] = false
	p.mu.Unlock()

	p.Touch(ctx, userID)
	if !wasOnline {
		p.emitOnline(userID)
	}
}

func (p *Presence) Touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	uid := strconv.FormatUint(uint64(userID), 10)
	if err := p.rdb.SAdd(ctx, presenceOnlineSetKey, uid).Err(); err != nil {
		log.Printf("presence touch SADD failed for user %d: %v", userID, err)
	}
	if err := p.rdb.SetEx(ctx, p.lastSeenKey(userID), strconv.FormatInt(time.Now().Unix(), 10), p.lastSeenTTL).Err(); err != nil {
		log.Printf("presence touch SETEX failed for user %d: %v", userID, err)
	}
}

func (p *Presence) Unregister(ctx context.Context, userID uint) {
	_ = ctx
	p.mu.Lock()
	if n, ok := p.localConnCounts[userID]; ok {
		n--
		if n > 0 {
			p.localConnCounts[userID] = n
			p.mu.Unlock()
			return
		}
		delete(p.localConnCounts, userID)
	}

	if t, ok := p.offlineTimers[userID]; ok {
		t.Stop()
	}
	grace := p.offlineGrace
	p.offlineTimers[userID] = time.AfterFunc(grace, func() {
		p.finalizeOffline(context.Background(), userID)
	})
	p.mu.Unlock()
}

func (p *Presence) IsOnline(ctx context.Context, userID uint) bool {
	p.mu.RLock()
	if p.localConnCounts[userID] > 0 {
		p.mu.RUnlock()
		return true
	}
	p.mu.RUnlock()

	if p.rdb == nil {
		return false
	}
	exists, err := p.rdb.Exists(ctx, p.lastSeenKey(userID)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// reapOnce performs one cleanup pass over the Redis online set, removing
// members whose last-seen key expired.
func (p *Presence) reapOnce(ctx context.Context) {
	if p.rdb == nil {
		return
	}

	members, err := p.rdb.SMembers(ctx, presenceOnlineSetKey).Result()
	if err != nil {
		return
	}

	for _, raw := range members {
		id64, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			continue
		}
		userID := uint(id64)
		exists, existsErr := p.rdb.Exists(ctx, p.lastSeenKey(userID)).Result()
		if existsErr != nil || exists > 0 {
			continue
		}

		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, raw).Err()

		p.mu.RLock()
		hasLocal := p.localConnCounts[userID] > 0
		p.mu.RUnlock()
		if !hasLocal {
			p.emitOffline(userID)
		}
	}
}

func (p *Presence) reaperLoop() {
	ticker := time.NewTicker(p.reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapOnce(context.Background())
		}
	}
}

func (p *Presence) finalizeOffline(ctx context.Context, userID uint) {
	p.mu.Lock()
	if p.localConnCounts[userID] > 0 {
		delete(p.offlineTimers, userID)
		p.mu.Unlock()
		return
	}
	delete(p.offlineTimers, userID)
	p.mu.Unlock()

	if p.rdb != nil {
		exists, err := p.rdb.Exists(ctx, p.lastSeenKey(userID)).Result()
		if err == nil && exists > 0 {
			// Another instance refreshed presence, keep the user online.
			return
		}
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, strconv.FormatUint(uint64(userID), 10)).Err()
	}

	p.emitOffline(userID)
}

func (p *Presence) emitOnline(userID uint) {
	p.mu.Lock()
	p.offlineNotified[userID] = false
	cb := p.onUserOnline
	p.mu.Unlock()
	if cb != nil {
		cb(userID)
	}
}

func (p *Presence) emitOffline(userID uint) {
	p.mu.Lock()
	if p.offlineNotified[userID] {
		p.mu.Unlock()
		return
	}
	p.offlineNotified[userID] = true
	cb := p.onUserOffline
	p.mu.Unlock()
	if cb != nil {
		cb(userID)
	}
}

func (p *Presence) lastSeenKey(userID uint) string {
	return presenceLastSeenKeyNS + strconv.FormatUint(uint64(userID), 10)
}
