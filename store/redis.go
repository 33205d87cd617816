package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key layout under the configured prefix (default "ak"):
//
//	<prefix>:user:<id>     hash of UserRecord fields
//	<prefix>:email:<email> string, user id (unique-email index)
//	<prefix>:reset:<hash>  string, user id, expires with the reset window
//
// The reset and consume scripts derive the user key from the indexed id, so
// this store assumes a single keyspace (standalone or a cluster with a
// shared hash tag), matching how it is deployed behind one auth service.

// createUserLua atomically performs the unique-email check and the record
// insert.
// KEYS[1] = email index key
// KEYS[2] = user hash key
// ARGV    = id, email, password hash, verified, picture, created at
var createUserLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return {err='duplicate'}
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[2],
  'id', ARGV[1],
  'email', ARGV[2],
  'password_hash', ARGV[3],
  'verified', ARGV[4],
  'picture', ARGV[5],
  'created_at', ARGV[6])
return 1
`)

// setResetLua writes the reset hash and deadline onto the user hash and the
// lookup index in one step, dropping the index entry of any outstanding
// reset so only the newest token can be spent.
// KEYS[1] = user hash key
// KEYS[2] = new reset index key
// ARGV[1] = token hash
// ARGV[2] = expiry deadline (unix seconds)
// ARGV[3] = reset index key prefix
// ARGV[4] = index TTL seconds
// ARGV[5] = user id
var setResetLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {err='not_found'}
end
local old = redis.call('HGET', KEYS[1], 'reset_hash')
if old and old ~= '' then
  redis.call('DEL', ARGV[3] .. old)
end
redis.call('HSET', KEYS[1], 'reset_hash', ARGV[1], 'reset_expires', ARGV[2])
redis.call('SET', KEYS[2], ARGV[5], 'EX', tonumber(ARGV[4]))
return 1
`)

// consumeResetLua is the single-use spend: index lookup, hash and deadline
// validation, password swap, and cleanup of both reset fields plus the
// index entry, all in one script.
// KEYS[1] = reset index key
// ARGV[1] = user hash key prefix
// ARGV[2] = token hash
// ARGV[3] = current unix seconds
// ARGV[4] = new password hash
//
// Returns the user id on success, or error string 'not_found' for every
// miss class.
var consumeResetLua = redis.NewScript(`
local id = redis.call('GET', KEYS[1])
if not id then
  return {err='not_found'}
end
local ukey = ARGV[1] .. id
local stored = redis.call('HGET', ukey, 'reset_hash')
local deadline = tonumber(redis.call('HGET', ukey, 'reset_expires'))
if not stored or stored ~= ARGV[2] or not deadline then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end
if tonumber(ARGV[3]) >= deadline then
  redis.call('HDEL', ukey, 'reset_hash', 'reset_expires')
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end
redis.call('HSET', ukey, 'password_hash', ARGV[4])
redis.call('HDEL', ukey, 'reset_hash', 'reset_expires')
redis.call('DEL', KEYS[1])
return id
`)

// markVerifiedLua flips verified to true exactly once.
// KEYS[1] = user hash key
// Returns 1 when newly verified, 0 when already verified.
var markVerifiedLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {err='not_found'}
end
if redis.call('HGET', KEYS[1], 'verified') == '1' then
  return 0
end
redis.call('HSET', KEYS[1], 'verified', '1')
return 1
`)

// Redis implements Store on a go-redis client.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedis wraps an existing client. An empty prefix selects "ak".
func NewRedis(rdb redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "ak"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (s *Redis) userKey(id string) string     { return s.prefix + ":user:" + id }
func (s *Redis) emailKey(email string) string { return s.prefix + ":email:" + email }
func (s *Redis) resetKey(hash string) string  { return s.prefix + ":reset:" + hash }

func (s *Redis) userKeyPrefix() string { return s.prefix + ":user:" }

func (s *Redis) Create(ctx context.Context, rec *UserRecord) error {
	verified := "0"
	if rec.Verified {
		verified = "1"
	}

	err := createUserLua.Run(ctx, s.rdb,
		[]string{s.emailKey(rec.Email), s.userKey(rec.ID)},
		rec.ID,
		rec.Email,
		rec.PasswordHash,
		verified,
		rec.Picture,
		rec.CreatedAt,
	).Err()
	if err != nil {
		if err.Error() == "duplicate" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

func (s *Redis) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	id, err := s.rdb.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return s.GetByID(ctx, id)
}

func (s *Redis) GetByID(ctx context.Context, id string) (*UserRecord, error) {
	fields, err := s.rdb.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	return recordFromFields(fields), nil
}

func (s *Redis) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt int64) error {
	ttl := time.Until(time.Unix(expiresAt, 0))
	ttlSec := int64(ttl / time.Second)
	if ttlSec < 1 {
		// Keep the index alive long enough for the consume script to
		// observe the expired deadline instead of a missing key.
		ttlSec = 1
	}

	err := setResetLua.Run(ctx, s.rdb,
		[]string{s.userKey(id), s.resetKey(tokenHash)},
		tokenHash,
		expiresAt,
		s.prefix+":reset:",
		ttlSec,
		id,
	).Err()
	if err != nil {
		if err.Error() == "not_found" {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

func (s *Redis) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (string, error) {
	result, err := consumeResetLua.Run(ctx, s.rdb,
		[]string{s.resetKey(tokenHash)},
		s.userKeyPrefix(),
		tokenHash,
		time.Now().Unix(),
		newPasswordHash,
	).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return "", ErrResetNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	id, ok := result.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: unexpected lua result type", ErrUnavailable)
	}

	return id, nil
}

func (s *Redis) MarkVerified(ctx context.Context, id string) (bool, error) {
	result, err := markVerifiedLua.Run(ctx, s.rdb, []string{s.userKey(id)}).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	n, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("%w: unexpected lua result type", ErrUnavailable)
	}

	return n == 0, nil
}

func recordFromFields(fields map[string]string) *UserRecord {
	rec := &UserRecord{
		ID:             fields["id"],
		Email:          fields["email"],
		PasswordHash:   fields["password_hash"],
		Verified:       fields["verified"] == "1",
		Picture:        fields["picture"],
		ResetTokenHash: fields["reset_hash"],
	}
	if v := fields["reset_expires"]; v != "" {
		rec.ResetExpiresAt, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := fields["created_at"]; v != "" {
		rec.CreatedAt, _ = strconv.ParseInt(v, 10, 64)
	}

	return rec
}
