package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/ikkim/maison-backend/internal/kv"
	"github.com/ikkim/maison-backend/pkg/logger"
)

var (
	// ErrPersistFailed wraps storage write failures. The in-memory change that
	// triggered the write has still been applied.
	ErrPersistFailed = errors.New("change applied but could not be persisted")

	errUnknownVersion = errors.New("slot written by a newer schema version")
)

// corruptSuffix names the slot that keeps an unreadable payload aside.
const corruptSuffix = ".corrupt"

// Migration upgrades a slot payload by exactly one schema version.
type Migration func(data json.RawMessage) (json.RawMessage, error)

// DefaultMigrations upgrades payloads written by the browser storefront
// (version 1, camelCase keys, no envelope) to the current format.
var DefaultMigrations = []Migration{SnakeCaseKeys}

// envelope is the stored form of every slot.
type envelope struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// binding ties an in-memory value to one durable slot. Every mutation is
// written back in full while the lock is held, so writes reach the store in
// mutation order.
type binding[T any] struct {
	mu         sync.RWMutex
	store      kv.Store
	slot       string
	value      T
	migrations []Migration
}

func (b *binding[T]) schemaVersion() int {
	return 1 + len(b.migrations)
}

// load reads the slot, falling back to defaults when it is missing or unreadable.
func (b *binding[T]) load(ctx context.Context, defaults T) error {
	raw, err := b.store.Load(ctx, b.slot)
	if errors.Is(err, kv.ErrSlotNotFound) {
		logger.Info("Slot not found, seeding defaults", map[string]interface{}{
			"slot": b.slot,
		})
		b.value = defaults
		b.persistLogged(ctx)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load slot %s: %w", b.slot, err)
	}

	value, version, err := b.decode(raw)
	if err != nil {
		logger.Warn("Slot is unreadable, falling back to defaults", map[string]interface{}{
			"slot":   b.slot,
			"error":  err.Error(),
			"backup": b.slot + corruptSuffix,
			"bytes":  len(raw),
		})
		if saveErr := b.store.Save(ctx, b.slot+corruptSuffix, raw); saveErr != nil {
			logger.Error("Failed to back up unreadable slot; its contents are lost", saveErr, map[string]interface{}{
				"slot": b.slot,
			})
		}
		b.value = defaults
		b.persistLogged(ctx)
		return nil
	}

	b.value = value
	if version != b.schemaVersion() {
		logger.Info("Slot migrated", map[string]interface{}{
			"slot": b.slot,
			"from": version,
			"to":   b.schemaVersion(),
		})
		b.persistLogged(ctx)
	}
	return nil
}

// decode unwraps the envelope (or accepts a bare version 1 payload) and runs
// pending migrations.
func (b *binding[T]) decode(raw []byte) (T, int, error) {
	var zero T

	data := json.RawMessage(raw)
	version := 1

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Version > 0 && len(env.Data) > 0 {
		data = env.Data
		version = env.Version
	} else if !json.Valid(raw) {
		return zero, 0, errors.New("invalid JSON")
	}

	if version > b.schemaVersion() {
		return zero, version, fmt.Errorf("%w: %d > %d", errUnknownVersion, version, b.schemaVersion())
	}

	for v := version; v < b.schemaVersion(); v++ {
		migrated, err := b.migrations[v-1](data)
		if err != nil {
			return zero, version, fmt.Errorf("migrate v%d: %w", v, err)
		}
		data = migrated
	}

	var value T
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&value); err != nil {
		return zero, version, fmt.Errorf("decode: %w", err)
	}
	return value, version, nil
}

// persist serializes the whole value into the slot. Callers hold b.mu.
func (b *binding[T]) persist(ctx context.Context) error {
	data, err := json.Marshal(b.value)
	if err != nil {
		return fmt.Errorf("%w: slot %s: %w", ErrPersistFailed, b.slot, err)
	}
	raw, err := json.Marshal(envelope{
		Version: b.schemaVersion(),
		SavedAt: time.Now().UTC(),
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("%w: slot %s: %w", ErrPersistFailed, b.slot, err)
	}

	if err := b.store.Save(ctx, b.slot, raw); err != nil {
		logger.Error("Failed to persist slot", err, map[string]interface{}{
			"slot":  b.slot,
			"bytes": len(raw),
		})
		return fmt.Errorf("%w: slot %s: %w", ErrPersistFailed, b.slot, err)
	}
	return nil
}

func (b *binding[T]) persistLogged(ctx context.Context) {
	if err := b.persist(ctx); err != nil {
		logger.Warn("Slot kept in memory only", map[string]interface{}{
			"slot":  b.slot,
			"error": err.Error(),
		})
	}
}

// SnakeCaseKeys rewrites every object key from camelCase to snake_case.
func SnakeCaseKeys(data json.RawMessage) (json.RawMessage, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(snakeValue(v))
}

func snakeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[toSnake(k)] = snakeValue(val)
		}
		return out
	case []interface{}:
		for i := range t {
			t[i] = snakeValue(t[i])
		}
		return t
	default:
		return v
	}
}

func toSnake(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
