package estimate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hallday/hallday-api/internal/gallery"
)

type fakeRepo struct {
	detailed  *DetailedEstimate
	lastGraph *Graph
	updatedID int64
	deletedID int64
	created   bool
}

func (f *fakeRepo) Create(_ context.Context, g *Graph) (int64, error) {
	f.lastGraph = g
	f.created = true
	return 1, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, g *Graph) error {
	f.updatedID = id
	f.lastGraph = g
	return nil
}

func (f *fakeRepo) GetDetailed(_ context.Context, _ int64) (*DetailedEstimate, error) {
	return f.detailed, nil
}

func (f *fakeRepo) ListByType(_ context.Context, _, _ string, _, _ int) ([]ListItem, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	f.deletedID = id
	return nil
}

type fakeUploader struct {
	uploads []string
	failAt  int
}

func (u *fakeUploader) Upload(_ context.Context, f *gallery.File, destPath string) (string, error) {
	u.uploads = append(u.uploads, destPath)
	if u.failAt > 0 && len(u.uploads) == u.failAt {
		return "", errors.New("bucket unavailable")
	}
	return fmt.Sprintf("https://cdn.example.com/%s/%s", destPath, f.Name), nil
}

type fakeBlobStore struct {
	deleted []string
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobStore) KeyFromURL(url string) (string, bool) {
	const prefix = "https://cdn.example.com/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func stagedFile(name string) *gallery.File {
	return gallery.NewFile(name, 16, "image/jpeg", io.NopCloser(bytes.NewReader([]byte("fake image bytes"))))
}

func strPtr(s string) *string { return &s }
func idPtr(id int64) *int64   { return &id }

func writeRequest(photos ...PhotoPlanEntry) *WriteRequest {
	return &WriteRequest{
		Company: CompanyInput{Name: "그랜드웨딩"},
		Hall:    HallInput{Name: "그랜드홀"},
		Photos:  photos,
	}
}

func existingEstimate(estimateType string, photoIDs ...int64) *DetailedEstimate {
	det := &DetailedEstimate{
		Estimate: Estimate{ID: 42, HallID: 7, Type: estimateType},
		Hall:     &Hall{ID: 7, WeddingCompanyID: 5, Name: "그랜드홀"},
		Company:  &WeddingCompany{ID: 5, Name: "그랜드웨딩"},
	}
	for i, id := range photoIDs {
		det.HallPhotos = append(det.HallPhotos, HallPhoto{
			ID:        id,
			HallID:    7,
			URL:       fmt.Sprintf("https://cdn.example.com/halls/7/%d.jpg", id),
			OrderNum:  i + 1,
			IsVisible: true,
		})
	}
	return det
}

func TestCreateBuildsGraphInDisplayOrder(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeStandard, 1)}
	up := &fakeUploader{}
	blobs := &fakeBlobStore{}
	svc := NewService(repo, up, blobs)

	req := writeRequest(
		PhotoPlanEntry{FileField: "main_photo", Caption: "대표 사진"},
		PhotoPlanEntry{FileField: "photo_1"},
		PhotoPlanEntry{FileField: "photo_2"},
	)
	files := PhotoFiles{
		"main_photo": stagedFile("main.jpg"),
		"photo_1":    stagedFile("one.jpg"),
		"photo_2":    stagedFile("two.jpg"),
	}

	det, err := svc.Create(context.Background(), TypeStandard, req, files, uuid.New())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if det == nil {
		t.Fatal("Create() returned nil estimate")
	}
	if !repo.created {
		t.Fatal("Create() did not reach the repository")
	}

	g := repo.lastGraph
	if len(g.Photos) != 3 {
		t.Fatalf("got %d manifest entries, want 3", len(g.Photos))
	}
	for i, p := range g.Photos {
		if p.OrderNum != i+1 {
			t.Errorf("photo %d has order_num %d, want %d", i, p.OrderNum, i+1)
		}
		if p.RemoteID != nil {
			t.Errorf("photo %d carries remote id %d, want none for a new upload", i, *p.RemoteID)
		}
		if p.URL == "" {
			t.Errorf("photo %d has empty URL", i)
		}
	}
	if g.Photos[0].Caption != "대표 사진" {
		t.Errorf("main caption = %q", g.Photos[0].Caption)
	}
	if len(up.uploads) != 3 {
		t.Errorf("got %d uploads, want 3", len(up.uploads))
	}
	if g.Estimate.Type != TypeStandard {
		t.Errorf("estimate type = %q, want %q", g.Estimate.Type, TypeStandard)
	}
	if len(blobs.deleted) != 0 {
		t.Errorf("create deleted stored objects: %v", blobs.deleted)
	}
}

func TestCreateWithoutPhotosFails(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeUploader{}, nil)

	_, err := svc.Create(context.Background(), TypeStandard, writeRequest(), PhotoFiles{}, uuid.Nil)
	if !errors.Is(err, ErrMainPhotoRequired) {
		t.Fatalf("Create() error = %v, want ErrMainPhotoRequired", err)
	}
}

func TestCreateUnknownFilePart(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeUploader{}, nil)

	req := writeRequest(PhotoPlanEntry{FileField: "missing"})
	_, err := svc.Create(context.Background(), TypeStandard, req, PhotoFiles{}, uuid.Nil)
	if !errors.Is(err, ErrInvalidPhotoPlan) {
		t.Fatalf("Create() error = %v, want ErrInvalidPhotoPlan", err)
	}
}

func TestCreateUploadFailureSkipsDatabase(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeUploader{failAt: 1}, nil)

	req := writeRequest(PhotoPlanEntry{FileField: "main_photo"})
	files := PhotoFiles{"main_photo": stagedFile("main.jpg")}

	_, err := svc.Create(context.Background(), TypeStandard, req, files, uuid.Nil)
	if !errors.Is(err, ErrPhotoUploadFailed) {
		t.Fatalf("Create() error = %v, want ErrPhotoUploadFailed", err)
	}
	if repo.created {
		t.Error("a failed upload must not write to the database")
	}
}

func TestUpdateReconcilesGallery(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeStandard, 1, 2, 3)}
	up := &fakeUploader{}
	blobs := &fakeBlobStore{}
	svc := NewService(repo, up, blobs)

	// Keep the main, drop photo 2, insert a new upload ahead of photo 3
	req := writeRequest(
		PhotoPlanEntry{ID: idPtr(1)},
		PhotoPlanEntry{FileField: "new_photo", Caption: "가든 전경"},
		PhotoPlanEntry{ID: idPtr(3)},
	)
	files := PhotoFiles{"new_photo": stagedFile("garden.jpg")}

	_, err := svc.Update(context.Background(), TypeStandard, 42, req, files)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if repo.updatedID != 42 {
		t.Errorf("updated id = %d, want 42", repo.updatedID)
	}

	g := repo.lastGraph
	if len(g.DeletePhotoIDs) != 1 || g.DeletePhotoIDs[0] != 2 {
		t.Errorf("delete ids = %v, want [2]", g.DeletePhotoIDs)
	}
	if len(g.Photos) != 3 {
		t.Fatalf("got %d manifest entries, want 3", len(g.Photos))
	}

	if g.Photos[0].RemoteID == nil || *g.Photos[0].RemoteID != 1 || g.Photos[0].OrderNum != 1 {
		t.Errorf("main entry = %+v, want remote id 1 at order 1", g.Photos[0])
	}
	if g.Photos[1].RemoteID != nil || g.Photos[1].OrderNum != 2 {
		t.Errorf("new entry = %+v, want no remote id at order 2", g.Photos[1])
	}
	if g.Photos[2].RemoteID == nil || *g.Photos[2].RemoteID != 3 || g.Photos[2].OrderNum != 3 {
		t.Errorf("kept entry = %+v, want remote id 3 at order 3", g.Photos[2])
	}

	if len(up.uploads) != 1 {
		t.Fatalf("got %d uploads, want 1", len(up.uploads))
	}
	if up.uploads[0] != "halls/7/sub_2" {
		t.Errorf("upload path = %q, want halls/7/sub_2", up.uploads[0])
	}

	// The dropped photo's stored object goes with its row
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "halls/7/2.jpg" {
		t.Errorf("deleted blobs = %v, want [halls/7/2.jpg]", blobs.deleted)
	}
}

func TestUpdateReplacesMainPhoto(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeStandard, 1, 2)}
	blobs := &fakeBlobStore{}
	svc := NewService(repo, &fakeUploader{}, blobs)

	req := writeRequest(
		PhotoPlanEntry{FileField: "main_photo"},
		PhotoPlanEntry{ID: idPtr(2)},
	)
	files := PhotoFiles{"main_photo": stagedFile("fresh.jpg")}

	_, err := svc.Update(context.Background(), TypeStandard, 42, req, files)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	g := repo.lastGraph
	if g.Photos[0].RemoteID == nil || *g.Photos[0].RemoteID != 1 {
		t.Errorf("superseded main should keep remote id 1, got %+v", g.Photos[0])
	}
	if g.Photos[0].URL == "https://cdn.example.com/halls/7/1.jpg" {
		t.Error("superseded main should carry the freshly uploaded URL")
	}
	if len(g.DeletePhotoIDs) != 0 {
		t.Errorf("replacing the main photo is not a deletion, got %v", g.DeletePhotoIDs)
	}

	// The superseded row keeps its id but its old object is orphaned
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "halls/7/1.jpg" {
		t.Errorf("deleted blobs = %v, want [halls/7/1.jpg]", blobs.deleted)
	}
}

func TestUpdateRejectsDuplicatePhotoID(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeStandard, 1, 2)}
	svc := NewService(repo, &fakeUploader{}, nil)

	req := writeRequest(
		PhotoPlanEntry{ID: idPtr(1)},
		PhotoPlanEntry{ID: idPtr(2)},
		PhotoPlanEntry{ID: idPtr(2)},
	)
	_, err := svc.Update(context.Background(), TypeStandard, 42, req, PhotoFiles{})
	if !errors.Is(err, ErrInvalidPhotoPlan) {
		t.Fatalf("Update() error = %v, want ErrInvalidPhotoPlan", err)
	}
}

func TestUpdateRejectsSubPromotedToMain(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeStandard, 1, 2)}
	svc := NewService(repo, &fakeUploader{}, nil)

	req := writeRequest(PhotoPlanEntry{ID: idPtr(2)})
	_, err := svc.Update(context.Background(), TypeStandard, 42, req, PhotoFiles{})
	if !errors.Is(err, ErrInvalidPhotoPlan) {
		t.Fatalf("Update() error = %v, want ErrInvalidPhotoPlan", err)
	}
}

func TestUpdateUnknownPhotoID(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeStandard, 1)}
	svc := NewService(repo, &fakeUploader{}, nil)

	req := writeRequest(
		PhotoPlanEntry{ID: idPtr(1)},
		PhotoPlanEntry{ID: idPtr(99)},
	)
	_, err := svc.Update(context.Background(), TypeStandard, 42, req, PhotoFiles{})
	if !errors.Is(err, ErrInvalidPhotoPlan) {
		t.Fatalf("Update() error = %v, want ErrInvalidPhotoPlan", err)
	}
}

func TestUpdateCapacity(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeStandard, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)}
	svc := NewService(repo, &fakeUploader{}, nil)

	plan := []PhotoPlanEntry{{ID: idPtr(1)}}
	for id := int64(2); id <= 10; id++ {
		plan = append(plan, PhotoPlanEntry{ID: idPtr(id)})
	}
	plan = append(plan, PhotoPlanEntry{FileField: "extra"})

	req := writeRequest(plan...)
	files := PhotoFiles{"extra": stagedFile("extra.jpg")}

	_, err := svc.Update(context.Background(), TypeStandard, 42, req, files)
	if !errors.Is(err, ErrTooManySubPhotos) {
		t.Fatalf("Update() error = %v, want ErrTooManySubPhotos", err)
	}
}

func TestUpdateTypeMismatch(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeAdmin, 1)}
	svc := NewService(repo, &fakeUploader{}, nil)

	req := writeRequest(PhotoPlanEntry{ID: idPtr(1)})
	_, err := svc.Update(context.Background(), TypeStandard, 42, req, PhotoFiles{})
	if !errors.Is(err, ErrEstimateNotFound) {
		t.Fatalf("Update() error = %v, want ErrEstimateNotFound", err)
	}
}

func TestGetTypeMismatch(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeAdmin, 1)}
	svc := NewService(repo, &fakeUploader{}, nil)

	_, err := svc.Get(context.Background(), TypeStandard, 42)
	if !errors.Is(err, ErrEstimateNotFound) {
		t.Fatalf("Get() error = %v, want ErrEstimateNotFound", err)
	}
}

func TestDeleteTypeMismatch(t *testing.T) {
	repo := &fakeRepo{detailed: existingEstimate(TypeAdmin, 1)}
	svc := NewService(repo, &fakeUploader{}, nil)

	err := svc.Delete(context.Background(), TypeStandard, 42)
	if !errors.Is(err, ErrEstimateNotFound) {
		t.Fatalf("Delete() error = %v, want ErrEstimateNotFound", err)
	}
	if repo.deletedID != 0 {
		t.Errorf("repo delete called for id %d", repo.deletedID)
	}
}

func TestGraphFromRequestParsesDate(t *testing.T) {
	req := writeRequest(PhotoPlanEntry{FileField: "main_photo"})
	req.Estimate.Date = strPtr("2026-10-24")

	g, err := graphFromRequest(TypeStandard, req, uuid.Nil)
	if err != nil {
		t.Fatalf("graphFromRequest() error = %v", err)
	}
	if g.Estimate.Date == nil || g.Estimate.Date.Format("2006-01-02") != "2026-10-24" {
		t.Errorf("date = %v, want 2026-10-24", g.Estimate.Date)
	}

	req.Estimate.Date = strPtr("24/10/2026")
	if _, err := graphFromRequest(TypeStandard, req, uuid.Nil); err == nil {
		t.Error("graphFromRequest() accepted a malformed date")
	}
}
