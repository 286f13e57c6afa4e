package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds each backend call made by Prefs.
const DefaultTimeout = 2 * time.Second

// Prefs stores JSON values on top of a Store. Failures are logged at warn
// level and otherwise ignored: a missing or unreadable preference reads
// as absent, a failed write is dropped.
type Prefs struct {
	mu      sync.Mutex
	store   Store
	logger  *zap.Logger
	timeout time.Duration
}

// NewPrefs wraps s. A nil logger discards log output.
func NewPrefs(s Store, logger *zap.Logger) *Prefs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prefs{store: s, logger: logger, timeout: DefaultTimeout}
}

// Load decodes the value under key into v and reports whether it did.
func (p *Prefs) Load(key string, v any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	raw, err := p.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		p.logger.Warn("preference read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		p.logger.Warn("preference is corrupt, ignoring", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Save encodes v and replaces the value under key. Writes are
// serialized so the last Save of a key wins.
func (p *Prefs) Save(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("preference not encodable", zap.String("key", key), zap.Error(err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.store.Set(ctx, key, raw); err != nil {
		p.logger.Warn("preference write failed", zap.String("key", key), zap.Error(err))
	}
}

// Check reports whether the backend answers. A missing key is a healthy
// answer.
func (p *Prefs) Check(ctx context.Context) error {
	_, err := p.store.Get(ctx, "health:probe")
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
