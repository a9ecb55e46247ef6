package session

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tallyhq/authflow"
)

const (
	redisKeyPrefix    = "afs"
	sessionRecordVer1 = 1
	maxFieldLen       = 65535
)

var (
	// ErrSessionNotFound is returned when no record exists for the token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned for a record past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionBackend wraps Redis transport failures.
	ErrSessionBackend = errors.New("session backend unavailable")
)

// RedisStore persists session payloads server-side, keyed by a hash of
// the session token so the raw token never appears in a key. Route
// guards call Get with the token from the client.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisStore builds a store on client. prefix defaults to "afs".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = redisKeyPrefix
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + ":" + hex.EncodeToString(sum[:16])
}

// Set implements authflow.SessionStore. The TTL comes from the
// controller's session options; a payload expiry in the past is
// rejected by Redis via a non-positive TTL, so it is clamped here.
func (s *RedisStore) Set(ctx context.Context, payload authflow.SessionPayload, opts authflow.SessionOptions) error {
	encoded, err := encodeSessionRecord(payload)
	if err != nil {
		return err
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Until(payload.ExpiresAt)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: non-positive session ttl", ErrSessionBackend)
	}

	if err := s.redis.Set(ctx, s.key(payload.Token), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}
	return nil
}

// Get loads the payload for token, deleting every expired record it
// touches.
func (s *RedisStore) Get(ctx context.Context, token string) (authflow.SessionPayload, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return authflow.SessionPayload{}, ErrSessionNotFound
		}
		return authflow.SessionPayload{}, fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}

	payload, err := decodeSessionRecord(data)
	if err != nil {
		return authflow.SessionPayload{}, err
	}
	if time.Now().After(payload.ExpiresAt) {
		_, _ = s.redis.Del(ctx, s.key(token)).Result()
		return authflow.SessionPayload{}, ErrSessionExpired
	}
	return payload, nil
}

// Delete removes the session for token and reports whether one
// existed. Used on logout.
func (s *RedisStore) Delete(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}
	return n > 0, nil
}

func encodeSessionRecord(payload authflow.SessionPayload) ([]byte, error) {
	var claims []byte
	if len(payload.Claims) > 0 {
		encoded, err := json.Marshal(payload.Claims)
		if err != nil {
			return nil, fmt.Errorf("encode session claims: %w", err)
		}
		claims = encoded
	}

	if len(payload.Token) > maxFieldLen || len(payload.UserID) > maxFieldLen || len(payload.Email) > maxFieldLen {
		return nil, errors.New("session field length exceeded")
	}

	var buf bytes.Buffer
	buf.WriteByte(sessionRecordVer1)
	if err := binary.Write(&buf, binary.BigEndian, payload.ExpiresAt.Unix()); err != nil {
		return nil, err
	}
	for _, field := range []string{payload.Token, payload.UserID, payload.Email} {
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(claims))); err != nil {
		return nil, err
	}
	buf.Write(claims)

	return buf.Bytes(), nil
}

func decodeSessionRecord(data []byte) (authflow.SessionPayload, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return authflow.SessionPayload{}, err
	}
	if version != sessionRecordVer1 {
		return authflow.SessionPayload{}, errors.New("invalid session record version")
	}

	var expires int64
	if err := binary.Read(reader, binary.BigEndian, &expires); err != nil {
		return authflow.SessionPayload{}, err
	}

	fields := make([]string, 3)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return authflow.SessionPayload{}, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return authflow.SessionPayload{}, err
		}
		fields[i] = string(raw)
	}

	var claimsLen uint32
	if err := binary.Read(reader, binary.BigEndian, &claimsLen); err != nil {
		return authflow.SessionPayload{}, err
	}
	payload := authflow.SessionPayload{
		Token:     fields[0],
		UserID:    fields[1],
		Email:     fields[2],
		ExpiresAt: time.Unix(expires, 0),
	}
	if claimsLen > 0 {
		raw := make([]byte, claimsLen)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return authflow.SessionPayload{}, err
		}
		claims := map[string]any{}
		if err := json.Unmarshal(raw, &claims); err != nil {
			return authflow.SessionPayload{}, fmt.Errorf("decode session claims: %w", err)
		}
		payload.Claims = claims
	}

	return payload, nil
}
