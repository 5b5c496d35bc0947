package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/filter"
)

// SearchList runs a filtered, paginated FT.SEARCH.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q == nil || q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, errors.New("offset and limit must not be negative")
	}

	args := []string{q.IndexName, buildQuery(q.Filters)}
	if q.SortBy != "" {
		args = append(args, "SORTBY", q.SortBy, "ASC")
	}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}
	args = append(args, "LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit), "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseListResult(raw)
}

// SearchCount returns the number of matching documents via LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, q *db.ListQuery) (int, error) {
	if q == nil || q.IndexName == "" {
		return 0, errors.New("index name is required")
	}
	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(q.IndexName, buildQuery(q.Filters), "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// buildQuery translates a filter expression into FT.SEARCH query syntax.
// The empty expression matches every document.
func buildQuery(expr filter.Expression) string {
	if expr.IsEmpty() {
		return "*"
	}

	var parts []string
	for _, cond := range expr.Must() {
		parts = append(parts, buildCondition(cond))
	}
	if len(expr.Should()) > 0 {
		should := make([]string, 0, len(expr.Should()))
		for _, cond := range expr.Should() {
			should = append(should, buildCondition(cond))
		}
		parts = append(parts, "("+strings.Join(should, " | ")+")")
	}
	for _, cond := range expr.MustNot() {
		parts = append(parts, "-"+buildCondition(cond))
	}

	// A purely negative query needs a positive anchor.
	if len(expr.Must()) == 0 && len(expr.Should()) == 0 {
		parts = append([]string{"*"}, parts...)
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	if cond.IsRange() {
		return buildNumericFilter(cond.Key(), *cond.Range())
	}
	escaped := make([]string, len(cond.Values()))
	for i, v := range cond.Values() {
		escaped[i] = escapeTag(v)
	}
	return "@" + cond.Key() + ":{" + strings.Join(escaped, " | ") + "}"
}

func buildNumericFilter(key string, r filter.Range) string {
	lo, hi := "-inf", "+inf"
	if r.GT() != nil {
		lo = "(" + formatFloat(*r.GT())
	} else if r.GTE() != nil {
		lo = formatFloat(*r.GTE())
	}
	if r.LT() != nil {
		hi = "(" + formatFloat(*r.LT())
	} else if r.LTE() != nil {
		hi = formatFloat(*r.LTE())
	}
	return "@" + key + ":[" + lo + " " + hi + "]"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// escapeTag backslash-escapes every ASCII punctuation and whitespace rune so
// tag values are matched literally. Non-ASCII runes pass through unchanged.
func escapeTag(v string) string {
	var b strings.Builder
	b.Grow(len(v) + 4)
	for _, r := range v {
		if r < 0x80 && !isAlnum(byte(r)) && r != '_' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
