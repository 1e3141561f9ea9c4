package gallery

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReader struct {
	*bytes.Reader
	closes int
}

func (c *countingReader) Close() error {
	c.closes++
	return nil
}

func newTestFile(name string) (*File, *countingReader) {
	r := &countingReader{Reader: bytes.NewReader([]byte("fake image bytes"))}
	return NewFile(name, 16, "image/jpeg", r), r
}

func seededEditor(t *testing.T, ids ...int64) *Editor {
	t.Helper()
	ed := NewEditor()
	seeds := make([]SeedPhoto, 0, len(ids))
	for i, id := range ids {
		seeds = append(seeds, SeedPhoto{
			RemoteID: id,
			URL:      "https://cdn.example.com/" + string(rune('a'+i)) + ".jpg",
			OrderNum: i + 1,
			Visible:  true,
		})
	}
	ed.Seed(seeds)
	return ed
}

func TestSeedSplitsMainAndSubs(t *testing.T) {
	ed := NewEditor()
	ed.Seed([]SeedPhoto{
		{RemoteID: 3, URL: "https://cdn/c.jpg", OrderNum: 3, Visible: true},
		{RemoteID: 1, URL: "https://cdn/a.jpg", OrderNum: 1, Visible: true},
		{RemoteID: 2, URL: "https://cdn/b.jpg", OrderNum: 2, Visible: false},
	})

	require.NotNil(t, ed.Main())
	mainID, ok := ed.Main().RemoteID()
	require.True(t, ok)
	assert.Equal(t, int64(1), mainID)
	assert.Equal(t, "https://cdn/a.jpg", ed.Main().URL())

	subs := ed.Subs()
	require.Len(t, subs, 2)
	id0, _ := subs[0].RemoteID()
	id1, _ := subs[1].RemoteID()
	assert.Equal(t, int64(2), id0)
	assert.Equal(t, int64(3), id1)
	assert.False(t, subs[0].Visible())
	assert.True(t, subs[1].Visible())
}

func TestSetMainPhotoReleasesReplacedFile(t *testing.T) {
	ed := NewEditor()
	f1, r1 := newTestFile("first.jpg")
	f2, r2 := newTestFile("second.jpg")

	ed.SetMainPhoto(f1)
	ed.SetMainPhoto(f2)

	assert.Equal(t, 1, r1.closes, "replaced file must be released exactly once")
	assert.Equal(t, 0, r2.closes)
	assert.Same(t, f2, ed.Main().PendingFile())
}

func TestSetMainPhotoKeepsPersistedHistory(t *testing.T) {
	ed := seededEditor(t, 10)
	f, _ := newTestFile("new-main.jpg")

	ed.SetMainPhoto(f)

	assert.Equal(t, SourcePending, ed.Main().Source())
	id, ok := ed.Main().RemoteID()
	require.True(t, ok, "superseded main keeps its persisted id as history")
	assert.Equal(t, int64(10), id)
	assert.Empty(t, ed.DeletedIDs(), "replacing the main photo is not a deletion")
}

func TestClearMainPhotoFileRevertsToPersisted(t *testing.T) {
	ed := seededEditor(t, 10)
	f, r := newTestFile("new-main.jpg")
	ed.SetMainPhoto(f)

	ed.ClearMainPhotoFile()

	assert.Equal(t, 1, r.closes)
	require.NotNil(t, ed.Main())
	assert.Equal(t, SourcePersisted, ed.Main().Source())
	id, _ := ed.Main().RemoteID()
	assert.Equal(t, int64(10), id)
}

func TestClearMainPhotoFileWithoutHistoryClearsSlot(t *testing.T) {
	ed := NewEditor()
	f, r := newTestFile("main.jpg")
	ed.SetMainPhoto(f)

	ed.ClearMainPhotoFile()

	assert.Equal(t, 1, r.closes)
	assert.Nil(t, ed.Main())
}

func TestRemoveMainPhotoRecordsDeletion(t *testing.T) {
	ed := seededEditor(t, 10)

	ed.RemoveMainPhoto()

	assert.Nil(t, ed.Main())
	assert.Equal(t, []int64{10}, ed.DeletedIDs())
}

func TestAddSubPhotosCapacity(t *testing.T) {
	ed := NewEditor()

	full := make([]*File, MaxSubPhotos)
	for i := range full {
		full[i], _ = newTestFile("sub.jpg")
	}
	_, err := ed.AddSubPhotos(full)
	require.NoError(t, err)
	assert.Equal(t, MaxSubPhotos, ed.SubCount())

	extra, r := newTestFile("one-too-many.jpg")
	_, err = ed.AddSubPhotos([]*File{extra})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, MaxSubPhotos, ed.SubCount(), "rejected batch must not mutate the collection")
	assert.Equal(t, 0, r.closes, "rejected file stays with the caller")
}

func TestAddSubPhotosBatchIsAllOrNothing(t *testing.T) {
	ed := seededEditor(t, 1, 2, 3, 4, 5, 6, 7, 8)

	// 7 existing subs, batch of 3 would hit 10
	batch := make([]*File, 3)
	for i := range batch {
		batch[i], _ = newTestFile("sub.jpg")
	}
	_, err := ed.AddSubPhotos(batch)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 7, ed.SubCount())
}

func TestRemoveSubPhoto(t *testing.T) {
	ed := seededEditor(t, 1, 2, 3)
	subs := ed.Subs()

	require.NoError(t, ed.RemoveSubPhoto(subs[0].LocalID()))

	assert.Equal(t, 1, ed.SubCount())
	assert.Equal(t, []int64{2}, ed.DeletedIDs())

	remaining, _ := ed.Subs()[0].RemoteID()
	assert.Equal(t, int64(3), remaining, "later slots keep their identity")

	assert.ErrorIs(t, ed.RemoveSubPhoto("no-such-slot"), ErrSlotNotFound)
}

func TestRemoveSubPhotoReleasesPendingFile(t *testing.T) {
	ed := NewEditor()
	f, r := newTestFile("sub.jpg")
	slots, err := ed.AddSubPhotos([]*File{f})
	require.NoError(t, err)

	require.NoError(t, ed.RemoveSubPhoto(slots[0].LocalID()))

	assert.Equal(t, 1, r.closes)
	assert.Empty(t, ed.DeletedIDs(), "a pending slot has nothing to delete server-side")
}

func TestDeletionSetOnlyGrows(t *testing.T) {
	ed := seededEditor(t, 1, 2, 3)
	subs := ed.Subs()

	require.NoError(t, ed.RemoveSubPhoto(subs[0].LocalID()))
	require.NoError(t, ed.RemoveSubPhoto(subs[1].LocalID()))

	f, _ := newTestFile("replacement.jpg")
	_, err := ed.AddSubPhotos([]*File{f})
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 3}, ed.DeletedIDs(), "adding photos never shrinks the deletion set")
}

func TestReorderSubPhotos(t *testing.T) {
	ed := seededEditor(t, 1, 2, 3, 4)

	require.NoError(t, ed.ReorderSubPhotos(2, 0))

	got := make([]int64, 0, 3)
	for _, s := range ed.Subs() {
		id, _ := s.RemoteID()
		got = append(got, id)
	}
	assert.Equal(t, []int64{4, 2, 3}, got)

	assert.ErrorIs(t, ed.ReorderSubPhotos(-1, 0), ErrBadIndex)
	assert.ErrorIs(t, ed.ReorderSubPhotos(0, 3), ErrBadIndex)
	assert.NoError(t, ed.ReorderSubPhotos(1, 1))
}

func TestSetCaptionAndVisible(t *testing.T) {
	ed := seededEditor(t, 1, 2)
	sub := ed.Subs()[0]

	require.NoError(t, ed.SetCaption(sub.LocalID(), "chapel view"))
	require.NoError(t, ed.SetVisible(sub.LocalID(), false))

	assert.Equal(t, "chapel view", ed.Subs()[0].Caption())
	assert.False(t, ed.Subs()[0].Visible())

	assert.ErrorIs(t, ed.SetCaption("missing", "x"), ErrSlotNotFound)
	assert.ErrorIs(t, ed.SetVisible("missing", true), ErrSlotNotFound)
}

func TestCloseReleasesEveryPendingFileOnce(t *testing.T) {
	ed := NewEditor()
	mainFile, mainR := newTestFile("main.jpg")
	sub1, r1 := newTestFile("sub1.jpg")
	sub2, r2 := newTestFile("sub2.jpg")

	ed.SetMainPhoto(mainFile)
	_, err := ed.AddSubPhotos([]*File{sub1, sub2})
	require.NoError(t, err)

	ed.Close()
	ed.Close() // second close must be harmless

	assert.Equal(t, 1, mainR.closes)
	assert.Equal(t, 1, r1.closes)
	assert.Equal(t, 1, r2.closes)
}
