package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/db/memory"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/suggestion"
	profilerepo "github.com/kailas-cloud/matchcraft/internal/repository/profile"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	users := profilerepo.New(s)
	require.NoError(t, users.EnsureIndex(ctx))

	for _, u := range []struct {
		id, name, profession, location string
	}{
		{"u1", "Priya Sharma", "Engineer", "Mumbai"},
		{"u2", "Supriya Rao", "Doctor", "Pune"},
		{"u3", "Arjun Mehta", "Pricing Analyst", "Delhi"},
		{"u4", "Kiran", "Teacher", "Prayagraj"},
	} {
		rec, err := domprofile.New(u.id, domprofile.Input{
			DisplayName: u.name, Profession: u.profession, Location: u.location, Age: 30,
		}, 1)
		require.NoError(t, err)
		require.NoError(t, users.Save(ctx, rec, ""))
	}
	return s
}

func TestNamePrefix(t *testing.T) {
	r := New(seed(t))

	got, err := r.NamePrefix(context.Background(), "pri", suggestion.BranchLimit)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, suggestion.Suggestion{
		ID: "u1", DisplayName: "Priya Sharma", Age: 30, Profession: "Engineer", Location: "Mumbai",
	}, got[0])

	none, err := r.NamePrefix(context.Background(), "zz", suggestion.BranchLimit)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNamePrefix_SkipsStaleNameEntry(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	users := profilerepo.New(s)

	// Two renames that both saw "Priya Sharma" as the previous name.
	for _, name := range []string{"Bina Shah", "Chitra Iyer"} {
		rec, err := domprofile.New("u1", domprofile.Input{DisplayName: name, Age: 30}, 2)
		require.NoError(t, err)
		require.NoError(t, users.Save(ctx, rec, "Priya Sharma"))
	}

	r := New(s)
	stale, err := r.NamePrefix(ctx, "bin", suggestion.BranchLimit)
	require.NoError(t, err)
	assert.Empty(t, stale)

	got, err := r.NamePrefix(ctx, "chi", suggestion.BranchLimit)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Chitra Iyer", got[0].DisplayName)
}

func TestNamePrefix_Limit(t *testing.T) {
	r := New(seed(t))
	got, err := r.NamePrefix(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTermMatch(t *testing.T) {
	r := New(seed(t))

	got, err := r.TermMatch(context.Background(), "pri", suggestion.BranchLimit)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	// "pri" is a prefix of Priya, Pricing; Supriya only contains it.
	assert.ElementsMatch(t, []string{"u1", "u3"}, ids)
}

func TestTermMatch_DeletedUserDisappears(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	require.NoError(t, profilerepo.New(s).Delete(ctx, "u1"))

	r := New(s)
	byName, err := r.NamePrefix(ctx, "pri", 10)
	require.NoError(t, err)
	assert.Empty(t, byName)

	byTerm, err := r.TermMatch(ctx, "priya", 10)
	require.NoError(t, err)
	assert.Empty(t, byTerm)
}

type brokenStore struct{ err error }

func (b brokenStore) ZRangeByPrefix(context.Context, string, string, int) ([]string, error) {
	return nil, b.err
}

func (b brokenStore) HGetAllMulti(context.Context, []string) ([]map[string]string, error) {
	return nil, b.err
}

func (b brokenStore) SearchList(context.Context, *db.ListQuery) (*db.SearchResult, error) {
	return nil, b.err
}

func TestErrorsWrapped(t *testing.T) {
	boom := &db.Error{Op: db.OpSearch, Err: errors.New("timeout")}
	r := New(brokenStore{err: boom})

	_, err := r.NamePrefix(context.Background(), "a", 10)
	assert.ErrorIs(t, err, boom)
	_, err = r.TermMatch(context.Background(), "a", 10)
	assert.ErrorIs(t, err, boom)

	var dbErr *db.Error
	assert.ErrorAs(t, err, &dbErr)
}
