package estimate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/hallday/hallday-api/internal/gallery"
)

// PhotoFiles maps multipart field names to staged uploads
type PhotoFiles map[string]*gallery.File

// BlobStore removes stored photo objects once their rows are gone
type BlobStore interface {
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// Service handles estimate business logic
type Service struct {
	repo     Repository
	uploader gallery.Uploader
	blobs    BlobStore
}

// NewService creates a new estimate service
func NewService(repo Repository, uploader gallery.Uploader, blobs BlobStore) *Service {
	return &Service{repo: repo, uploader: uploader, blobs: blobs}
}

// Create builds a new estimate graph. Staged photos are uploaded in
// display order before anything touches the database, so a failed upload
// leaves no partial estimate behind.
func (s *Service) Create(ctx context.Context, estimateType string, req *WriteRequest, files PhotoFiles, adminID uuid.UUID) (*DetailedEstimate, error) {
	ed := gallery.NewEditor()
	defer ed.Close()
	defer releaseAll(files)

	if err := applyPlan(ed, req.Photos, files); err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("halls/%s", uuid.NewString())
	res, err := ed.Resolve(ctx, s.uploader, prefix)
	if err != nil {
		return nil, mapResolveErr(err)
	}

	g, err := graphFromRequest(estimateType, req, adminID)
	if err != nil {
		return nil, err
	}
	g.Photos = res.Manifest
	g.DeletePhotoIDs = res.DeleteIDs

	id, err := s.repo.Create(ctx, g)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("estimate_id", id).Str("type", estimateType).
		Int("photos", len(res.Manifest)).Msg("estimate created")

	return s.repo.GetDetailed(ctx, id)
}

// Update reconciles an existing estimate with the request. The photos
// array is the desired gallery: persisted photos absent from it are
// deleted, staged files are uploaded, and the whole graph is written in
// one transaction.
func (s *Service) Update(ctx context.Context, estimateType string, id int64, req *WriteRequest, files PhotoFiles) (*DetailedEstimate, error) {
	existing, err := s.repo.GetDetailed(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Type != estimateType {
		return nil, ErrEstimateNotFound
	}

	ed := gallery.NewEditor()
	defer ed.Close()
	defer releaseAll(files)

	ed.Seed(seedPhotos(existing.HallPhotos))

	if err := applyPlan(ed, req.Photos, files); err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("halls/%d", existing.Hall.ID)
	res, err := ed.Resolve(ctx, s.uploader, prefix)
	if err != nil {
		return nil, mapResolveErr(err)
	}

	g, err := graphFromRequest(estimateType, req, uuid.Nil)
	if err != nil {
		return nil, err
	}
	g.Company.ID = existing.Company.ID
	g.Hall.ID = existing.Hall.ID
	g.Hall.WeddingCompanyID = existing.Company.ID
	g.Photos = res.Manifest
	g.DeletePhotoIDs = res.DeleteIDs

	if err := s.repo.Update(ctx, id, g); err != nil {
		return nil, err
	}

	// Rows are gone; now drop the orphaned objects. Best effort, a leaked
	// blob is not worth failing a committed update over.
	s.deleteStaleBlobs(ctx, staleBlobURLs(existing.HallPhotos, res))

	log.Info().Int64("estimate_id", id).
		Int("photos", len(res.Manifest)).Ints64("deleted_photos", res.DeleteIDs).
		Msg("estimate updated")

	return s.repo.GetDetailed(ctx, id)
}

// Get returns one estimate with its full graph
func (s *Service) Get(ctx context.Context, estimateType string, id int64) (*DetailedEstimate, error) {
	det, err := s.repo.GetDetailed(ctx, id)
	if err != nil {
		return nil, err
	}
	if det == nil || det.Type != estimateType {
		return nil, ErrEstimateNotFound
	}
	return det, nil
}

// List returns a page of estimates of one type
func (s *Service) List(ctx context.Context, estimateType, search string, page, limit int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := s.repo.ListByType(ctx, estimateType, search, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Estimates: items, Total: total, Page: page, Limit: limit}, nil
}

// Delete removes an estimate and its child records
func (s *Service) Delete(ctx context.Context, estimateType string, id int64) error {
	det, err := s.repo.GetDetailed(ctx, id)
	if err != nil {
		return err
	}
	if det == nil || det.Type != estimateType {
		return ErrEstimateNotFound
	}
	return s.repo.Delete(ctx, id)
}

// applyPlan drives the gallery editor to match the requested photo plan.
// plan[0] is the main photo; the rest are subs in display order. Each
// entry names a persisted photo by id or a staged file by field name.
func applyPlan(ed *gallery.Editor, plan []PhotoPlanEntry, files PhotoFiles) error {
	if len(plan) == 0 {
		return ErrMainPhotoRequired
	}

	kept := make(map[int64]struct{})
	for _, entry := range plan {
		if entry.ID != nil {
			if _, dup := kept[*entry.ID]; dup {
				return fmt.Errorf("%w: photo %d referenced more than once", ErrInvalidPhotoPlan, *entry.ID)
			}
			kept[*entry.ID] = struct{}{}
		}
	}

	// Drop seeded subs the plan no longer references
	for _, slot := range ed.Subs() {
		if rid, ok := slot.RemoteID(); ok {
			if _, keep := kept[rid]; !keep {
				if err := ed.RemoveSubPhoto(slot.LocalID()); err != nil {
					return err
				}
			}
		}
	}

	main := plan[0]
	switch {
	case main.FileField != "":
		f, ok := files[main.FileField]
		if !ok {
			return fmt.Errorf("%w: unknown file part %q", ErrInvalidPhotoPlan, main.FileField)
		}
		delete(files, main.FileField)
		slot := ed.SetMainPhoto(f)
		if err := applySlotMeta(ed, slot.LocalID(), main); err != nil {
			return err
		}
	case main.ID != nil:
		slot := ed.Main()
		if slot == nil {
			return fmt.Errorf("%w: photo %d is not the main photo", ErrInvalidPhotoPlan, *main.ID)
		}
		rid, ok := slot.RemoteID()
		if !ok || rid != *main.ID {
			return fmt.Errorf("%w: photo %d is not the main photo", ErrInvalidPhotoPlan, *main.ID)
		}
		if err := applySlotMeta(ed, slot.LocalID(), main); err != nil {
			return err
		}
	default:
		return ErrMainPhotoRequired
	}

	// Walk sub entries in display order, collecting the target sequence
	target := make([]string, 0, len(plan)-1)
	for _, entry := range plan[1:] {
		switch {
		case entry.FileField != "":
			f, ok := files[entry.FileField]
			if !ok {
				return fmt.Errorf("%w: unknown file part %q", ErrInvalidPhotoPlan, entry.FileField)
			}
			slots, err := ed.AddSubPhotos([]*gallery.File{f})
			if err != nil {
				if errors.Is(err, gallery.ErrCapacityExceeded) {
					return ErrTooManySubPhotos
				}
				return err
			}
			delete(files, entry.FileField)
			if err := applySlotMeta(ed, slots[0].LocalID(), entry); err != nil {
				return err
			}
			target = append(target, slots[0].LocalID())
		case entry.ID != nil:
			slot := findSub(ed, *entry.ID)
			if slot == nil {
				return fmt.Errorf("%w: photo %d is not on this hall", ErrInvalidPhotoPlan, *entry.ID)
			}
			if err := applySlotMeta(ed, slot.LocalID(), entry); err != nil {
				return err
			}
			target = append(target, slot.LocalID())
		default:
			return fmt.Errorf("%w: entry has neither id nor file", ErrInvalidPhotoPlan)
		}
	}

	// Move each sub into its target position
	for i, localID := range target {
		cur := indexOfSub(ed, localID)
		if cur < 0 {
			return fmt.Errorf("%w: lost track of photo slot", ErrInvalidPhotoPlan)
		}
		if cur != i {
			if err := ed.ReorderSubPhotos(cur, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func applySlotMeta(ed *gallery.Editor, localID string, entry PhotoPlanEntry) error {
	if err := ed.SetCaption(localID, entry.Caption); err != nil {
		return err
	}
	if entry.IsVisible != nil {
		return ed.SetVisible(localID, *entry.IsVisible)
	}
	return nil
}

func findSub(ed *gallery.Editor, remoteID int64) *gallery.Slot {
	for _, slot := range ed.Subs() {
		if rid, ok := slot.RemoteID(); ok && rid == remoteID {
			return slot
		}
	}
	return nil
}

func indexOfSub(ed *gallery.Editor, localID string) int {
	for i, slot := range ed.Subs() {
		if slot.LocalID() == localID {
			return i
		}
	}
	return -1
}

func seedPhotos(photos []HallPhoto) []gallery.SeedPhoto {
	seeds := make([]gallery.SeedPhoto, 0, len(photos))
	for _, p := range photos {
		caption := ""
		if p.Caption != nil {
			caption = *p.Caption
		}
		seeds = append(seeds, gallery.SeedPhoto{
			RemoteID: p.ID,
			URL:      p.URL,
			OrderNum: p.OrderNum,
			Caption:  caption,
			Visible:  p.IsVisible,
		})
	}
	return seeds
}

// staleBlobURLs lists stored photo URLs no row references after a
// reconciled update: deleted photos, plus the old object of a superseded
// photo whose row now points at a fresh upload.
func staleBlobURLs(before []HallPhoto, res *gallery.Resolution) []string {
	deleted := make(map[int64]struct{}, len(res.DeleteIDs))
	for _, id := range res.DeleteIDs {
		deleted[id] = struct{}{}
	}
	current := make(map[int64]string, len(res.Manifest))
	for _, entry := range res.Manifest {
		if entry.RemoteID != nil {
			current[*entry.RemoteID] = entry.URL
		}
	}

	var stale []string
	for _, p := range before {
		if _, ok := deleted[p.ID]; ok {
			stale = append(stale, p.URL)
			continue
		}
		if url, ok := current[p.ID]; ok && url != p.URL {
			stale = append(stale, p.URL)
		}
	}
	return stale
}

func (s *Service) deleteStaleBlobs(ctx context.Context, urls []string) {
	if s.blobs == nil {
		return
	}
	for _, url := range urls {
		key, ok := s.blobs.KeyFromURL(url)
		if !ok {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to delete stale photo object")
		}
	}
}

func releaseAll(files PhotoFiles) {
	for _, f := range files {
		f.Release()
	}
}

func mapResolveErr(err error) error {
	if errors.Is(err, gallery.ErrMainPhotoRequired) {
		return ErrMainPhotoRequired
	}
	return fmt.Errorf("%w: %w", ErrPhotoUploadFailed, err)
}

func graphFromRequest(estimateType string, req *WriteRequest, adminID uuid.UUID) (*Graph, error) {
	g := &Graph{
		Company: WeddingCompany{
			Name:          req.Company.Name,
			Address:       req.Company.Address,
			Phone:         req.Company.Phone,
			Homepage:      req.Company.Homepage,
			Accessibility: req.Company.Accessibility,
			Lat:           req.Company.Lat,
			Lng:           req.Company.Lng,
			CeremonyTimes: CeremonyTimes(req.Company.CeremonyTimes),
		},
		Hall: Hall{
			Name:            req.Hall.Name,
			IntervalMinutes: req.Hall.IntervalMinutes,
			Guarantees:      req.Hall.Guarantees,
			Parking:         req.Hall.Parking,
			Type:            pq.StringArray(req.Hall.Type),
			Mood:            req.Hall.Mood,
		},
		Estimate: Estimate{
			Type:          estimateType,
			HallPrice:     req.Estimate.HallPrice,
			Time:          req.Estimate.Time,
			Guarantees:    req.Estimate.Guarantees,
			PenaltyAmount: req.Estimate.PenaltyAmount,
			PenaltyDetail: req.Estimate.PenaltyDetail,
			CreatedBy:     uuid.NullUUID{UUID: adminID, Valid: adminID != uuid.Nil},
		},
	}

	if req.Estimate.Date != nil {
		d, err := time.Parse("2006-01-02", *req.Estimate.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid estimate date: %w", err)
		}
		g.Estimate.Date = &d
	}

	for _, in := range req.HallIncludes {
		g.Includes = append(g.Includes, HallInclude{Category: in.Category, Subcategory: in.Subcategory})
	}
	for _, in := range req.MealPrices {
		g.MealPrices = append(g.MealPrices, MealPrice{MealType: in.MealType, Category: in.Category, Price: in.Price, Extra: in.Extra})
	}
	for _, in := range req.EstimateOptions {
		g.Options = append(g.Options, EstimateOption{
			Name: in.Name, Price: in.Price, IsRequired: in.IsRequired,
			Description: in.Description, ReferenceURL: in.ReferenceURL,
		})
	}
	for _, in := range req.Etcs {
		g.Etcs = append(g.Etcs, Etc{Content: in.Content})
	}
	for _, in := range req.WeddingPackages {
		dp := DetailedPackage{
			WeddingPackage: WeddingPackage{
				Type: in.Type, Name: in.Name,
				TotalPrice: in.TotalPrice, IsTotalPrice: in.IsTotalPrice,
			},
		}
		for _, it := range in.Items {
			dp.Items = append(dp.Items, WeddingPackageItem{
				Type: it.Type, CompanyName: it.CompanyName, Price: it.Price,
				Description: it.Description, URL: it.URL,
			})
		}
		g.Packages = append(g.Packages, dp)
	}
	return g, nil
}
