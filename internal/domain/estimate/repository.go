package estimate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hallday/hallday-api/internal/gallery"
)

// Graph is the full write model of one estimate. Photos is the desired
// final gallery manifest in display order; DeletePhotoIDs are persisted
// photos to remove in the same transaction.
type Graph struct {
	Company        WeddingCompany
	Hall           Hall
	Includes       []HallInclude
	Estimate       Estimate
	MealPrices     []MealPrice
	Options        []EstimateOption
	Etcs           []Etc
	Packages       []DetailedPackage
	Photos         []gallery.ManifestEntry
	DeletePhotoIDs []int64
}

// Repository defines estimate data access
type Repository interface {
	Create(ctx context.Context, g *Graph) (int64, error)
	Update(ctx context.Context, estimateID int64, g *Graph) error
	GetDetailed(ctx context.Context, id int64) (*DetailedEstimate, error)
	ListByType(ctx context.Context, estimateType, search string, limit, offset int) ([]ListItem, int, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a new estimate repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *Graph) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	companyID, err := r.insertCompany(ctx, tx, &g.Company)
	if err != nil {
		return 0, err
	}

	g.Hall.WeddingCompanyID = companyID
	hallID, err := r.insertHall(ctx, tx, &g.Hall)
	if err != nil {
		return 0, err
	}

	if err := r.replaceIncludes(ctx, tx, hallID, g.Includes); err != nil {
		return 0, err
	}
	if err := r.applyPhotos(ctx, tx, hallID, g.Photos, g.DeletePhotoIDs); err != nil {
		return 0, err
	}

	g.Estimate.HallID = hallID
	var estimateID int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO estimates (hall_id, hall_price, type, date, time, guarantees, penalty_amount, penalty_detail, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		g.Estimate.HallID, g.Estimate.HallPrice, g.Estimate.Type, g.Estimate.Date,
		g.Estimate.Time, g.Estimate.Guarantees, g.Estimate.PenaltyAmount,
		g.Estimate.PenaltyDetail, g.Estimate.CreatedBy,
	).Scan(&estimateID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert estimate: %w", err)
	}

	if err := r.replaceChildren(ctx, tx, estimateID, g); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return estimateID, nil
}

func (r *repository) Update(ctx context.Context, estimateID int64, g *Graph) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE estimates
		SET hall_price = $1, date = $2, time = $3, guarantees = $4,
		    penalty_amount = $5, penalty_detail = $6, updated_at = NOW()
		WHERE id = $7`,
		g.Estimate.HallPrice, g.Estimate.Date, g.Estimate.Time, g.Estimate.Guarantees,
		g.Estimate.PenaltyAmount, g.Estimate.PenaltyDetail, estimateID)
	if err != nil {
		return fmt.Errorf("failed to update estimate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEstimateNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wedding_companies
		SET name = $1, address = $2, phone = $3, homepage = $4,
		    accessibility = $5, lat = $6, lng = $7, ceremony_times = $8
		WHERE id = $9`,
		g.Company.Name, g.Company.Address, g.Company.Phone, g.Company.Homepage,
		g.Company.Accessibility, g.Company.Lat, g.Company.Lng, g.Company.CeremonyTimes,
		g.Company.ID)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE halls
		SET name = $1, interval_minutes = $2, guarantees = $3, parking = $4,
		    type = $5, mood = $6
		WHERE id = $7`,
		g.Hall.Name, g.Hall.IntervalMinutes, g.Hall.Guarantees, g.Hall.Parking,
		g.Hall.Type, g.Hall.Mood, g.Hall.ID)
	if err != nil {
		return fmt.Errorf("failed to update hall: %w", err)
	}

	if err := r.replaceIncludes(ctx, tx, g.Hall.ID, g.Includes); err != nil {
		return err
	}
	if err := r.applyPhotos(ctx, tx, g.Hall.ID, g.Photos, g.DeletePhotoIDs); err != nil {
		return err
	}
	if err := r.replaceChildren(ctx, tx, estimateID, g); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *repository) insertCompany(ctx context.Context, tx *sqlx.Tx, c *WeddingCompany) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO wedding_companies (name, address, phone, homepage, accessibility, lat, lng, ceremony_times)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.Name, c.Address, c.Phone, c.Homepage, c.Accessibility, c.Lat, c.Lng, c.CeremonyTimes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert company: %w", err)
	}
	c.ID = id
	return id, nil
}

func (r *repository) insertHall(ctx context.Context, tx *sqlx.Tx, h *Hall) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO halls (wedding_company_id, name, interval_minutes, guarantees, parking, type, mood)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		h.WeddingCompanyID, h.Name, h.IntervalMinutes, h.Guarantees, h.Parking, h.Type, h.Mood,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert hall: %w", err)
	}
	h.ID = id
	return id, nil
}

func (r *repository) replaceIncludes(ctx context.Context, tx *sqlx.Tx, hallID int64, includes []HallInclude) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM hall_includes WHERE hall_id = $1`, hallID); err != nil {
		return fmt.Errorf("failed to clear hall includes: %w", err)
	}
	for i := range includes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hall_includes (hall_id, category, subcategory)
			VALUES ($1, $2, $3)`,
			hallID, includes[i].Category, includes[i].Subcategory)
		if err != nil {
			return fmt.Errorf("failed to insert hall include: %w", err)
		}
	}
	return nil
}

// applyPhotos reconciles hall_photos with the resolved gallery manifest.
// Entries with an id update in place, entries without one insert, and
// DeletePhotoIDs rows are removed. Order numbers are dense from 1.
func (r *repository) applyPhotos(ctx context.Context, tx *sqlx.Tx, hallID int64, photos []gallery.ManifestEntry, deleteIDs []int64) error {
	if len(deleteIDs) > 0 {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM hall_photos WHERE hall_id = $1 AND id = ANY($2)`,
			hallID, pq.Array(deleteIDs))
		if err != nil {
			return fmt.Errorf("failed to delete hall photos: %w", err)
		}
	}
	for i := range photos {
		p := &photos[i]
		var caption *string
		if p.Caption != "" {
			caption = &p.Caption
		}
		if p.RemoteID != nil {
			_, err := tx.ExecContext(ctx, `
				UPDATE hall_photos
				SET url = $1, order_num = $2, caption = $3, is_visible = $4
				WHERE id = $5 AND hall_id = $6`,
				p.URL, p.OrderNum, caption, p.Visible, *p.RemoteID, hallID)
			if err != nil {
				return fmt.Errorf("failed to update hall photo: %w", err)
			}
		} else {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO hall_photos (hall_id, url, order_num, caption, is_visible)
				VALUES ($1, $2, $3, $4, $5)`,
				hallID, p.URL, p.OrderNum, caption, p.Visible)
			if err != nil {
				return fmt.Errorf("failed to insert hall photo: %w", err)
			}
		}
	}
	return nil
}

// replaceChildren rewrites the estimate's child collections wholesale
func (r *repository) replaceChildren(ctx context.Context, tx *sqlx.Tx, estimateID int64, g *Graph) error {
	for _, q := range []string{
		`DELETE FROM wedding_package_items WHERE wedding_package_id IN (SELECT id FROM wedding_packages WHERE estimate_id = $1)`,
		`DELETE FROM wedding_packages WHERE estimate_id = $1`,
		`DELETE FROM estimate_options WHERE estimate_id = $1`,
		`DELETE FROM meal_prices WHERE estimate_id = $1`,
		`DELETE FROM etcs WHERE estimate_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, estimateID); err != nil {
			return fmt.Errorf("failed to clear estimate children: %w", err)
		}
	}

	for i := range g.MealPrices {
		m := &g.MealPrices[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO meal_prices (estimate_id, meal_type, category, price, extra)
			VALUES ($1, $2, $3, $4, $5)`,
			estimateID, m.MealType, m.Category, m.Price, m.Extra)
		if err != nil {
			return fmt.Errorf("failed to insert meal price: %w", err)
		}
	}

	for i := range g.Options {
		o := &g.Options[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO estimate_options (estimate_id, name, price, is_required, description, reference_url)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			estimateID, o.Name, o.Price, o.IsRequired, o.Description, o.ReferenceURL)
		if err != nil {
			return fmt.Errorf("failed to insert estimate option: %w", err)
		}
	}

	for i := range g.Etcs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO etcs (estimate_id, content) VALUES ($1, $2)`,
			estimateID, g.Etcs[i].Content)
		if err != nil {
			return fmt.Errorf("failed to insert etc: %w", err)
		}
	}

	for i := range g.Packages {
		p := &g.Packages[i]
		var packageID int64
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO wedding_packages (estimate_id, type, name, total_price, is_total_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			estimateID, p.Type, p.Name, p.TotalPrice, p.IsTotalPrice,
		).Scan(&packageID)
		if err != nil {
			return fmt.Errorf("failed to insert wedding package: %w", err)
		}
		for j := range p.Items {
			it := &p.Items[j]
			_, err := tx.ExecContext(ctx, `
				INSERT INTO wedding_package_items (wedding_package_id, type, company_name, price, description, url)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				packageID, it.Type, it.CompanyName, it.Price, it.Description, it.URL)
			if err != nil {
				return fmt.Errorf("failed to insert package item: %w", err)
			}
		}
	}
	return nil
}

func (r *repository) GetDetailed(ctx context.Context, id int64) (*DetailedEstimate, error) {
	var det DetailedEstimate
	err := r.db.GetContext(ctx, &det.Estimate, `
		SELECT id, hall_id, hall_price, type, date, time, guarantees,
		       penalty_amount, penalty_detail, created_by, created_at, updated_at
		FROM estimates WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get estimate: %w", err)
	}

	var hall Hall
	err = r.db.GetContext(ctx, &hall, `
		SELECT id, wedding_company_id, name, interval_minutes, guarantees, parking, type, mood
		FROM halls WHERE id = $1`, det.HallID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hall: %w", err)
	}
	det.Hall = &hall

	var company WeddingCompany
	err = r.db.GetContext(ctx, &company, `
		SELECT id, name, address, phone, homepage, accessibility, lat, lng, ceremony_times, created_at
		FROM wedding_companies WHERE id = $1`, hall.WeddingCompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	det.Company = &company

	err = r.db.SelectContext(ctx, &det.HallPhotos, `
		SELECT id, hall_id, url, order_num, caption, is_visible
		FROM hall_photos WHERE hall_id = $1
		ORDER BY order_num`, hall.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hall photos: %w", err)
	}

	err = r.db.SelectContext(ctx, &det.HallIncludes, `
		SELECT id, hall_id, category, subcategory
		FROM hall_includes WHERE hall_id = $1
		ORDER BY id`, hall.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hall includes: %w", err)
	}

	err = r.db.SelectContext(ctx, &det.MealPrices, `
		SELECT id, estimate_id, meal_type, category, price, extra
		FROM meal_prices WHERE estimate_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal prices: %w", err)
	}

	err = r.db.SelectContext(ctx, &det.EstimateOptions, `
		SELECT id, estimate_id, name, price, is_required, description, reference_url
		FROM estimate_options WHERE estimate_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get estimate options: %w", err)
	}

	err = r.db.SelectContext(ctx, &det.Etcs, `
		SELECT id, estimate_id, content
		FROM etcs WHERE estimate_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get etcs: %w", err)
	}

	var packages []WeddingPackage
	err = r.db.SelectContext(ctx, &packages, `
		SELECT id, estimate_id, type, name, total_price, is_total_price
		FROM wedding_packages WHERE estimate_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get wedding packages: %w", err)
	}
	for i := range packages {
		dp := DetailedPackage{WeddingPackage: packages[i]}
		err = r.db.SelectContext(ctx, &dp.Items, `
			SELECT id, wedding_package_id, type, company_name, price, description, url
			FROM wedding_package_items WHERE wedding_package_id = $1
			ORDER BY id`, packages[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get package items: %w", err)
		}
		det.WeddingPackages = append(det.WeddingPackages, dp)
	}

	return &det, nil
}

func (r *repository) ListByType(ctx context.Context, estimateType, search string, limit, offset int) ([]ListItem, int, error) {
	where := `WHERE e.type = $1`
	args := []interface{}{estimateType}
	if search != "" {
		where += ` AND (wc.name ILIKE $2 OR h.name ILIKE $2 OR wc.address ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM estimates e
		JOIN halls h ON h.id = e.hall_id
		JOIN wedding_companies wc ON wc.id = h.wedding_company_id ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count estimates: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT e.id, e.type, e.hall_id, h.name AS hall_name,
		       wc.id AS company_id, wc.name AS company_name, wc.address,
		       e.hall_price, e.date,
		       (SELECT url FROM hall_photos hp WHERE hp.hall_id = h.id AND hp.order_num = 1 LIMIT 1) AS main_photo_url,
		       e.created_at
		FROM estimates e
		JOIN halls h ON h.id = e.hall_id
		JOIN wedding_companies wc ON wc.id = h.wedding_company_id
		%s
		ORDER BY e.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	items := []ListItem{}
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list estimates: %w", err)
	}
	return items, total, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM wedding_package_items WHERE wedding_package_id IN (SELECT id FROM wedding_packages WHERE estimate_id = $1)`,
		`DELETE FROM wedding_packages WHERE estimate_id = $1`,
		`DELETE FROM estimate_options WHERE estimate_id = $1`,
		`DELETE FROM meal_prices WHERE estimate_id = $1`,
		`DELETE FROM etcs WHERE estimate_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete estimate children: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM estimates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete estimate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEstimateNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
