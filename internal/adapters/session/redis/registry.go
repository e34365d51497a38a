// Package redis stores session registry entries in Redis.
//
// Every issued token is kept under its SHA-256 digest with a TTL equal to the
// token lifetime, and access tokens are additionally indexed in a per-user set
// so that all of a user's access grants can be revoked in one call.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/todo/internal/core/ports"
)

// ErrUnavailable wraps every error that comes back from the Redis client.
var ErrUnavailable = errors.New("session store unavailable")

// KEYS[1] token entry, ARGV[1] token digest, ARGV[2] prefix of user sets.
const deleteTokenScript = `
local owner = redis.call("GET", KEYS[1])
if not owner then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SREM", ARGV[2] .. owner, ARGV[1])
return 1
`

// KEYS[1] user set, ARGV[1] prefix of token entries.
const deleteAllForUserScript = `
local members = redis.call("SMEMBERS", KEYS[1])
local removed = 0
for _, digest in ipairs(members) do
  removed = removed + redis.call("DEL", ARGV[1] .. digest)
end
redis.call("DEL", KEYS[1])
return removed
`

var (
	deleteTokenLua      = redis.NewScript(deleteTokenScript)
	deleteAllForUserLua = redis.NewScript(deleteAllForUserScript)
)

type Registry struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.SessionRegistry = (*Registry)(nil)

func NewRegistry(client redis.UniversalClient, prefix string) *Registry {
	if prefix == "" {
		prefix = "todo"
	}
	return &Registry{client: client, prefix: prefix}
}

func (r *Registry) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.tokenKey(digest(token)), userID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set token: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Registry) Exists(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, r.tokenKey(digest(token))).Result()
	if err != nil {
		return false, fmt.Errorf("%w: exists: %v", ErrUnavailable, err)
	}
	return n == 1, nil
}

// Delete removes a single entry and its membership in the owner's access set.
// Deleting a token that is not present is not an error.
func (r *Registry) Delete(ctx context.Context, token string) (int64, error) {
	d := digest(token)
	n, err := deleteTokenLua.Run(ctx, r.client, []string{r.tokenKey(d)}, d, r.userSetPrefix()).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: delete token: %v", ErrUnavailable, err)
	}
	return n, nil
}

func (r *Registry) Take(ctx context.Context, token string) (string, bool, error) {
	userID, err := r.client.GetDel(ctx, r.tokenKey(digest(token))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: take token: %v", ErrUnavailable, err)
	}
	return userID, true, nil
}

// AddToUserSet records an access token for bulk revocation and resets the
// set's TTL, so the set outlives every member added to it.
func (r *Registry) AddToUserSet(ctx context.Context, userID, token string, ttl time.Duration) error {
	key := r.userSetKey(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, digest(token))
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: add to user set: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Registry) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	n, err := deleteAllForUserLua.Run(ctx, r.client, []string{r.userSetKey(userID)}, r.tokenPrefix()).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: delete user tokens: %v", ErrUnavailable, err)
	}
	return n, nil
}

func (r *Registry) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Registry) tokenPrefix() string {
	return r.prefix + ":token:"
}

func (r *Registry) tokenKey(d string) string {
	return r.tokenPrefix() + d
}

func (r *Registry) userSetPrefix() string {
	return r.prefix + ":access_tokens:"
}

func (r *Registry) userSetKey(userID string) string {
	return r.userSetPrefix() + userID
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
