package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/db/memory"
	"github.com/kailas-cloud/matchcraft/internal/domain"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	profilerepo "github.com/kailas-cloud/matchcraft/internal/repository/profile"
)

// Minimal valid file headers recognized by http.DetectContentType.
var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

type fakePhotos struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
	n         int
}

func (f *fakePhotos) Upload(_ context.Context, userID, contentType string, _ []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.n++
	url := fmt.Sprintf("http://cdn/photos/%s/%d.%s", userID, f.n, contentType[len("image/"):])
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakePhotos) DeleteURL(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.deleteErr
}

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	repo := profilerepo.New(store)
	require.NoError(t, repo.EnsureIndex(context.Background()))

	svc := New(repo, zap.NewNop())
	clock := time.UnixMilli(1_700_000_000_000)
	svc.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	seq := 0
	svc.newID = func() (string, error) {
		seq++
		return fmt.Sprintf("user-%02d", seq), nil
	}
	return svc, store
}

func TestCreateGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, domprofile.Input{DisplayName: "  Meera Iyer ", Profession: "Architect", Age: 29})
	require.NoError(t, err)
	assert.Equal(t, "user-01", rec.ID)
	assert.Equal(t, "Meera Iyer", rec.DisplayName)
	assert.True(t, rec.SearchTerms.Contains("arch"))
	assert.NotZero(t, rec.CreatedAt)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.DisplayName, got.DisplayName)
	assert.Equal(t, rec.SearchTerms, got.SearchTerms)
}

func TestCreate_Invalid(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domprofile.Input{DisplayName: "X", Age: 12})
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)

	_, err = svc.Create(context.Background(), domprofile.Input{})
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
}

func TestCreate_DefaultIDIsUUIDv7(t *testing.T) {
	id, err := newUUIDv7()
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, byte('7'), id[14])
}

func TestUpdate_RecomputesTokens(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, domprofile.Input{DisplayName: "Ravi", Profession: "Doctor"})
	require.NoError(t, err)

	upd, err := svc.Update(ctx, rec.ID, domprofile.Input{DisplayName: "Ravindra", Profession: "Pilot"})
	require.NoError(t, err)
	assert.Equal(t, rec.CreatedAt, upd.CreatedAt)
	assert.Greater(t, upd.UpdatedAt, rec.UpdatedAt)
	assert.False(t, upd.SearchTerms.Contains("doc"))
	assert.True(t, upd.SearchTerms.Contains("pil"))

	names, err := store.ZRangeByPrefix(ctx, domain.UserNamesKey, "ravi", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.NameMember("Ravindra", rec.ID)}, names)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "ghost", domprofile.Input{DisplayName: "A"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDelete(t *testing.T) {
	svc, store := newTestService(t)
	photos := &fakePhotos{}
	svc.WithPhotos(photos, 0)
	ctx := context.Background()

	rec, err := svc.Create(ctx, domprofile.Input{DisplayName: "Asha"})
	require.NoError(t, err)
	rec, err = svc.SetPhoto(ctx, rec.ID, "image/png", pngBytes)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rec.ID))

	_, err = svc.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	names, err := store.ZRangeByPrefix(ctx, domain.UserNamesKey, "asha", 10)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, []string{rec.PhotoURL}, photos.deleted)

	assert.ErrorIs(t, svc.Delete(ctx, rec.ID), domain.ErrUserNotFound)
}

func TestListAndCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []domprofile.Input{
		{DisplayName: "A", Gender: domprofile.GenderFemale, Age: 25},
		{DisplayName: "B", Gender: domprofile.GenderMale, Age: 30},
		{DisplayName: "C", Gender: domprofile.GenderFemale, Age: 35},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	f := domprofile.ListFilter{Gender: domprofile.GenderFemale}
	page, next, err := svc.List(ctx, f, "", 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "A", page[0].DisplayName)
	assert.NotEmpty(t, next)

	page, next, err = svc.List(ctx, f, next, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "C", page[0].DisplayName)
	assert.Empty(t, next)

	n, err := svc.Count(ctx, domprofile.ListFilter{MinAge: 28})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, _, err = svc.List(ctx, f, "not-a-cursor", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestReindex(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, domprofile.Input{DisplayName: "Kavya", Location: "Chennai"})
	require.NoError(t, err)

	// Simulate a record written before token generation covered location.
	require.NoError(t, store.HSet(ctx, domain.UserKey(rec.ID), map[string]string{
		domprofile.FieldSearchTerms: "k\x1fka",
	}))
	stale, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, stale.SearchTerms.Contains("chen"))

	n, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fresh, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, fresh.SearchTerms.Contains("chen"))
	assert.True(t, fresh.SearchTerms.Contains("kavya"))
}

func TestSetPhoto(t *testing.T) {
	svc, _ := newTestService(t)
	photos := &fakePhotos{}
	svc.WithPhotos(photos, 1024)
	ctx := context.Background()

	rec, err := svc.Create(ctx, domprofile.Input{DisplayName: "Neha"})
	require.NoError(t, err)

	first, err := svc.SetPhoto(ctx, rec.ID, "image/png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/photos/user-01/1.png", first.PhotoURL)
	assert.Empty(t, photos.deleted)

	second, err := svc.SetPhoto(ctx, rec.ID, "image/jpeg; charset=binary", jpegBytes)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/photos/user-01/2.jpeg", second.PhotoURL)
	assert.Equal(t, []string{first.PhotoURL}, photos.deleted)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, second.PhotoURL, got.PhotoURL)
}

func TestSetPhoto_Rejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec, err := svc.Create(ctx, domprofile.Input{DisplayName: "Neha"})
	require.NoError(t, err)

	_, err = svc.SetPhoto(ctx, rec.ID, "image/png", pngBytes)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	photos := &fakePhotos{}
	svc.WithPhotos(photos, 16)

	tests := []struct {
		name        string
		contentType string
		data        []byte
		want        error
	}{
		{"gif", "image/gif", []byte("GIF89a"), domain.ErrUnsupportedMedia},
		{"garbage type", "not a type", pngBytes, domain.ErrUnsupportedMedia},
		{"mismatched bytes", "image/png", jpegBytes, domain.ErrUnsupportedMedia},
		{"empty", "image/png", nil, domain.ErrInvalidProfile},
		{"too large", "image/png", append(append([]byte{}, pngBytes...), make([]byte, 32)...), domain.ErrPayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetPhoto(ctx, rec.ID, tt.contentType, tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, photos.uploaded)

	_, err = svc.SetPhoto(ctx, "ghost", "image/png", pngBytes)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	photos.uploadErr = errors.New("bucket unavailable")
	_, err = svc.SetPhoto(ctx, rec.ID, "image/png", pngBytes)
	assert.ErrorIs(t, err, photos.uploadErr)
}
