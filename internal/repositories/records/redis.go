package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dicechamber/dicechamber/internal/common/clock"
	"github.com/dicechamber/dicechamber/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	sessionKeyPrefix = "session:"
	sessionsIndexKey = "sessions"
	playersKeySuffix = ":players"
	rollsKeySuffix   = ":rolls"
	rollSeqKeySuffix = ":rollseq"
)

// ErrSessionNotFound is returned when a session row does not exist
var ErrSessionNotFound = errors.New("session not found")

// ErrPlayerNotFound is returned when a player row does not exist
var ErrPlayerNotFound = errors.New("player not found")

// Config holds configuration for the Redis records repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Clock for session activity timestamps; defaults to the system clock
	Clock clock.Clock
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	clock  clock.Clock
}

// NewRedis creates a new Redis-backed records repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
		clock:  clk,
	}, nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func playersKey(sessionID string) string {
	return sessionKeyPrefix + sessionID + playersKeySuffix
}

func rollsKey(sessionID string) string {
	return sessionKeyPrefix + sessionID + rollsKeySuffix
}

func rollSeqKey(sessionID string) string {
	return sessionKeyPrefix + sessionID + rollSeqKeySuffix
}

// CreateSession ensures the session row exists and refreshes its activity
func (r *redisRepository) CreateSession(ctx context.Context, input *CreateSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	now := r.clock.Now()

	metaJSON, err := r.client.Get(ctx, sessionKey(input.SessionID)).Result()
	meta := &models.SessionMeta{}
	switch {
	case err == redis.Nil:
		meta.ID = input.SessionID
		meta.CreatedAt = now
	case err != nil:
		return fmt.Errorf("failed to get session: %w", err)
	default:
		if err := json.Unmarshal([]byte(metaJSON), meta); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}
	}
	meta.LastActivity = now

	updated, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, sessionKey(input.SessionID), updated, 0)
	pipe.SAdd(ctx, sessionsIndexKey, input.SessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// UpsertPlayer inserts or updates a player row in the session roster
func (r *redisRepository) UpsertPlayer(ctx context.Context, input *UpsertPlayerInput) error {
	if input == nil || input.Player == nil {
		return errors.New("input and player cannot be nil")
	}

	if input.SessionID == "" || input.Player.ID == "" {
		return errors.New("session ID and player ID cannot be empty")
	}

	playerJSON, err := json.Marshal(input.Player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	err = r.client.HSet(ctx, playersKey(input.SessionID), input.Player.ID, playerJSON).Err()
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	return nil
}

// appendRollScript assigns the next sequence id and indexes the record in
// one atomic step, so a failed append never consumes an id. The assigned id
// is written into the stored record, keeping identical rolls distinct
// members of the ZSET.
var appendRollScript = redis.NewScript(`
local id = redis.call('INCR', KEYS[1])
local record = cjson.decode(ARGV[1])
record['id'] = id
redis.call('ZADD', KEYS[2], id, cjson.encode(record))
return id
`)

// AppendRoll assigns the next monotonic id and persists the record
func (r *redisRepository) AppendRoll(ctx context.Context, input *AppendRollInput) (*AppendRollOutput, error) {
	if input == nil || input.Record == nil {
		return nil, errors.New("input and record cannot be nil")
	}

	if input.SessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	record := *input.Record

	recordJSON, err := json.Marshal(&record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	id, err := appendRollScript.Run(ctx, r.client, []string{
		rollSeqKey(input.SessionID),
		rollsKey(input.SessionID),
	}, recordJSON).Int64()
	if err != nil {
		return nil, fmt.Errorf("failed to append roll: %w", err)
	}
	record.ID = id

	if err := r.touchSession(ctx, input.SessionID, record.Timestamp); err != nil {
		return nil, err
	}

	return &AppendRollOutput{Record: &record}, nil
}

// touchSession refreshes the session's LastActivity timestamp
func (r *redisRepository) touchSession(ctx context.Context, sessionID string, at time.Time) error {
	metaJSON, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	var meta models.SessionMeta
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if at.IsZero() {
		at = r.clock.Now()
	}
	meta.LastActivity = at

	updated, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(sessionID), updated, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// ListRoster retrieves every player row for a session
func (r *redisRepository) ListRoster(ctx context.Context, input *ListRosterInput) (*ListRosterOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	rows, err := r.client.HGetAll(ctx, playersKey(input.SessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}

	players := make([]*models.Player, 0, len(rows))
	for playerID, playerJSON := range rows {
		var player models.Player
		if err := json.Unmarshal([]byte(playerJSON), &player); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player %s: %w", playerID, err)
		}
		players = append(players, &player)
	}

	return &ListRosterOutput{Players: players}, nil
}

// ListRecentRolls retrieves the most recent records in ascending id order
func (r *redisRepository) ListRecentRolls(ctx context.Context, input *ListRecentRollsInput) (*ListRecentRollsOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	limit := input.Limit
	if limit <= 0 {
		return &ListRecentRollsOutput{Records: []*models.RollRecord{}}, nil
	}

	// Newest first, capped by the limit, then reversed to ascending order.
	rows, err := r.client.ZRevRange(ctx, rollsKey(input.SessionID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get recent rolls: %w", err)
	}

	var cutoff time.Time
	if input.MaxAge > 0 {
		cutoff = r.clock.Now().Add(-input.MaxAge)
	}

	records := make([]*models.RollRecord, 0, len(rows))
	for _, row := range rows {
		var record models.RollRecord
		if err := json.Unmarshal([]byte(row), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		if !cutoff.IsZero() && record.Timestamp.Before(cutoff) {
			break
		}
		records = append(records, &record)
	}

	// Reverse in place to ascending id order
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return &ListRecentRollsOutput{Records: records}, nil
}

// MarkInactive flags a player row as no longer connected
func (r *redisRepository) MarkInactive(ctx context.Context, input *MarkInactiveInput) error {
	if input == nil || input.SessionID == "" || input.PlayerID == "" {
		return errors.New("input, session ID and player ID cannot be empty")
	}

	playerJSON, err := r.client.HGet(ctx, playersKey(input.SessionID), input.PlayerID).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player: %w", err)
	}

	var player models.Player
	if err := json.Unmarshal([]byte(playerJSON), &player); err != nil {
		return fmt.Errorf("failed to unmarshal player: %w", err)
	}

	player.IsActive = false

	updated, err := json.Marshal(&player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	if err := r.client.HSet(ctx, playersKey(input.SessionID), input.PlayerID, updated).Err(); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	return nil
}

// PurgeOlderThan removes records older than the cutoff across all sessions.
// Only records strictly older than the cutoff are removed, so the newest
// record of a session survives whenever it is younger than the cutoff.
func (r *redisRepository) PurgeOlderThan(ctx context.Context, input *PurgeOlderThanInput) (*PurgeOlderThanOutput, error) {
	if input == nil || input.Age <= 0 {
		return nil, errors.New("input and age must be set")
	}

	cutoff := r.clock.Now().Add(-input.Age)

	sessionIDs, err := r.client.SMembers(ctx, sessionsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session index: %w", err)
	}

	output := &PurgeOlderThanOutput{}

	for _, sessionID := range sessionIDs {
		removed, err := r.purgeSessionRolls(ctx, sessionID, cutoff)
		if err != nil {
			return nil, err
		}
		output.RecordsRemoved += removed

		stale, err := r.dropSessionIfStale(ctx, sessionID, cutoff)
		if err != nil {
			return nil, err
		}
		if stale {
			output.SessionsRemoved++
		}
	}

	return output, nil
}

// purgeSessionRolls removes one session's records older than the cutoff
func (r *redisRepository) purgeSessionRolls(ctx context.Context, sessionID string, cutoff time.Time) (int, error) {
	rows, err := r.client.ZRangeWithScores(ctx, rollsKey(sessionID), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get rolls for %s: %w", sessionID, err)
	}

	// Records are ordered by id, and ids are assigned in timestamp order
	// within a session, so the first young record ends the scan.
	var lastOldID float64
	removed := 0
	for _, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}

		var record models.RollRecord
		if err := json.Unmarshal([]byte(member), &record); err != nil {
			return 0, fmt.Errorf("failed to unmarshal record in %s: %w", sessionID, err)
		}

		if !record.Timestamp.Before(cutoff) {
			break
		}

		lastOldID = row.Score
		removed++
	}

	if removed == 0 {
		return 0, nil
	}

	err = r.client.ZRemRangeByScore(ctx, rollsKey(sessionID), "-inf", fmt.Sprintf("%f", lastOldID)).Err()
	if err != nil {
		return 0, fmt.Errorf("failed to purge rolls for %s: %w", sessionID, err)
	}

	return removed, nil
}

// dropSessionIfStale deletes a session's keys once it has no records left
// and no activity since the cutoff
func (r *redisRepository) dropSessionIfStale(ctx context.Context, sessionID string, cutoff time.Time) (bool, error) {
	count, err := r.client.ZCard(ctx, rollsKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count rolls for %s: %w", sessionID, err)
	}
	if count > 0 {
		return false, nil
	}

	metaJSON, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	var meta models.SessionMeta
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return false, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}

	if !meta.LastActivity.Before(cutoff) {
		return false, nil
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.Del(ctx, playersKey(sessionID))
	pipe.Del(ctx, rollsKey(sessionID))
	pipe.Del(ctx, rollSeqKey(sessionID))
	pipe.SRem(ctx, sessionsIndexKey, sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to drop session %s: %w", sessionID, err)
	}

	return true, nil
}
