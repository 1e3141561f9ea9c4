package gallery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadCall struct {
	name string
	dest string
}

type fakeUploader struct {
	calls  []uploadCall
	failAt int // 1-based call number that fails, 0 for never
}

func (u *fakeUploader) Upload(_ context.Context, f *File, destPath string) (string, error) {
	u.calls = append(u.calls, uploadCall{name: f.Name, dest: destPath})
	if u.failAt > 0 && len(u.calls) == u.failAt {
		return "", errors.New("bucket unavailable")
	}
	return fmt.Sprintf("https://cdn.example.com/%s/%s", destPath, f.Name), nil
}

func TestResolveRequiresMainPhoto(t *testing.T) {
	ed := NewEditor()

	_, err := ed.Resolve(context.Background(), &fakeUploader{}, "halls/1")
	assert.ErrorIs(t, err, ErrMainPhotoRequired)

	f, _ := newTestFile("sub.jpg")
	_, addErr := ed.AddSubPhotos([]*File{f})
	require.NoError(t, addErr)

	_, err = ed.Resolve(context.Background(), &fakeUploader{}, "halls/1")
	assert.ErrorIs(t, err, ErrMainPhotoRequired, "sub photos alone do not satisfy the main photo requirement")
}

func TestResolveDenseOrderMixedSources(t *testing.T) {
	ed := seededEditor(t, 1, 2) // persisted main id 1, persisted sub id 2
	newSub, _ := newTestFile("venue.jpg")
	slots, err := ed.AddSubPhotos([]*File{newSub})
	require.NoError(t, err)

	// Move the new photo ahead of the persisted sub
	require.NoError(t, ed.ReorderSubPhotos(1, 0))
	require.NoError(t, ed.SetCaption(slots[0].LocalID(), "garden"))

	up := &fakeUploader{}
	res, err := ed.Resolve(context.Background(), up, "halls/7")
	require.NoError(t, err)

	require.Len(t, res.Manifest, 3)
	for i, entry := range res.Manifest {
		assert.Equal(t, i+1, entry.OrderNum, "order numbers are dense from 1")
	}

	main := res.Manifest[0]
	require.NotNil(t, main.RemoteID)
	assert.Equal(t, int64(1), *main.RemoteID)
	assert.Equal(t, "https://cdn.example.com/a.jpg", main.URL)

	uploaded := res.Manifest[1]
	assert.Nil(t, uploaded.RemoteID, "a new upload has no remote id yet")
	assert.Equal(t, "garden", uploaded.Caption)
	assert.NotEmpty(t, uploaded.URL)

	kept := res.Manifest[2]
	require.NotNil(t, kept.RemoteID)
	assert.Equal(t, int64(2), *kept.RemoteID)

	// Only the pending slot uploaded, at its display position
	require.Len(t, up.calls, 1)
	assert.Equal(t, "halls/7/sub_2", up.calls[0].dest)

	assert.Empty(t, res.DeleteIDs)
}

func TestResolveUploadsSequentiallyInDisplayOrder(t *testing.T) {
	ed := NewEditor()
	mainFile, _ := newTestFile("main.jpg")
	s1, _ := newTestFile("one.jpg")
	s2, _ := newTestFile("two.jpg")

	ed.SetMainPhoto(mainFile)
	_, err := ed.AddSubPhotos([]*File{s1, s2})
	require.NoError(t, err)

	up := &fakeUploader{}
	res, err := ed.Resolve(context.Background(), up, "halls/3")
	require.NoError(t, err)

	require.Len(t, up.calls, 3, "exactly one upload per staged file")
	assert.Equal(t, []uploadCall{
		{name: "main.jpg", dest: "halls/3/main"},
		{name: "one.jpg", dest: "halls/3/sub_2"},
		{name: "two.jpg", dest: "halls/3/sub_3"},
	}, up.calls)

	require.Len(t, res.Manifest, 3)
	assert.Equal(t, 1, res.Manifest[0].OrderNum)
}

func TestResolveAbortsOnFirstFailureAndSupportsRetry(t *testing.T) {
	ed := NewEditor()
	defer ed.Close()

	mainFile, mainR := newTestFile("main.jpg")
	sub, subR := newTestFile("sub.jpg")
	ed.SetMainPhoto(mainFile)
	_, err := ed.AddSubPhotos([]*File{sub})
	require.NoError(t, err)

	failing := &fakeUploader{failAt: 2}
	_, err = ed.Resolve(context.Background(), failing, "halls/9")
	require.Error(t, err)
	assert.Len(t, failing.calls, 2, "no uploads after the first failure")

	// Slot state untouched, files still alive
	require.NotNil(t, ed.Main())
	assert.Equal(t, 1, ed.SubCount())
	assert.Equal(t, 0, mainR.closes)
	assert.Equal(t, 0, subR.closes)

	// Retry re-reads the same staged bytes
	working := &fakeUploader{}
	res, err := ed.Resolve(context.Background(), working, "halls/9")
	require.NoError(t, err)
	assert.Len(t, working.calls, 2)
	assert.Len(t, res.Manifest, 2)
}

func TestResolveSupersededMainCarriesOldID(t *testing.T) {
	ed := seededEditor(t, 10)
	replacement, _ := newTestFile("better.jpg")
	ed.SetMainPhoto(replacement)

	up := &fakeUploader{}
	res, err := ed.Resolve(context.Background(), up, "halls/4")
	require.NoError(t, err)

	main := res.Manifest[0]
	require.NotNil(t, main.RemoteID)
	assert.Equal(t, int64(10), *main.RemoteID, "upload supersedes the old row instead of deleting it")
	assert.Contains(t, main.URL, "better.jpg")
	assert.Empty(t, res.DeleteIDs)
}

func TestResolveReportsDeletions(t *testing.T) {
	ed := seededEditor(t, 1, 2, 3)
	subs := ed.Subs()
	require.NoError(t, ed.RemoveSubPhoto(subs[0].LocalID()))

	res, err := ed.Resolve(context.Background(), &fakeUploader{}, "halls/5")
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, res.DeleteIDs)
	require.Len(t, res.Manifest, 2)
	assert.Equal(t, 2, res.Manifest[1].OrderNum, "remaining subs renumber densely")
}
