package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matchcraft/internal/db"
)

// ZAdd adds or updates sorted set members.
func (s *Store) ZAdd(ctx context.Context, key string, members ...db.ZMember) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zadd().Key(key).ScoreMember()
	for _, m := range members {
		cmd = cmd.ScoreMember(m.Score, m.Member)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZRem removes sorted set members. Absent members are ignored.
func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// ZRangeByPrefix returns up to limit members in [prefix, prefix+"\xff") via ZRANGEBYLEX.
func (s *Store) ZRangeByPrefix(ctx context.Context, key, prefix string, limit int) ([]string, error) {
	lo, hi := lexBounds(prefix)
	cmd := s.b().Zrangebylex().Key(key).Min(lo).Max(hi).Limit(0, int64(limit)).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRangeByLex, Err: err}
	}
	return members, nil
}

func lexBounds(prefix string) (string, string) {
	if prefix == "" {
		return "-", "+"
	}
	return "[" + prefix, "[" + prefix + "\xff"
}

// ZRange returns members by rank with their scores. rev walks from the highest score.
func (s *Store) ZRange(ctx context.Context, key string, start, stop int64, rev bool) ([]db.ZMember, error) {
	lo, hi := strconv.FormatInt(start, 10), strconv.FormatInt(stop, 10)
	var cmd rueidis.Completed
	if rev {
		cmd = s.b().Zrange().Key(key).Min(lo).Max(hi).Rev().Withscores().Build()
	} else {
		cmd = s.b().Zrange().Key(key).Min(lo).Max(hi).Withscores().Build()
	}
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	members, err := parseScoredMembers(raw)
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	return members, nil
}

// parseScoredMembers accepts the flat RESP2 layout [m1, s1, m2, s2, ...]
// and the RESP3 layout [[m1, s1], [m2, s2], ...].
func parseScoredMembers(raw []rueidis.RedisMessage) ([]db.ZMember, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0].IsArray() {
		out := make([]db.ZMember, 0, len(raw))
		for i := range raw {
			pair, err := raw[i].ToArray()
			if err != nil || len(pair) != 2 {
				return nil, fmt.Errorf("malformed scored member at %d", i)
			}
			m, err := scoredMember(pair[0], pair[1])
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}

	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("odd scored member reply length %d", len(raw))
	}
	out := make([]db.ZMember, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		m, err := scoredMember(raw[i], raw[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func scoredMember(member, score rueidis.RedisMessage) (db.ZMember, error) {
	name, err := member.ToString()
	if err != nil {
		return db.ZMember{}, fmt.Errorf("member: %w", err)
	}
	f, err := score.AsFloat64()
	if err != nil {
		return db.ZMember{}, fmt.Errorf("score of %s: %w", name, err)
	}
	return db.ZMember{Member: name, Score: f}, nil
}

// ZCard returns the number of members.
func (s *Store) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.do(ctx, s.b().Zcard().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpZCard, Err: err}
	}
	return n, nil
}
