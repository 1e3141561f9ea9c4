package estimate

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Estimate kinds
const (
	TypeStandard = "standard"
	TypeAdmin    = "admin"
)

// CeremonyTime is one ceremony time window of a wedding company
type CeremonyTime struct {
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// CeremonyTimes is stored as a jsonb column
type CeremonyTimes []CeremonyTime

// Value implements driver.Valuer
func (c CeremonyTimes) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner
func (c *CeremonyTimes) Scan(src interface{}) error {
	if src == nil {
		*c = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported ceremony_times type %T", src)
	}
}

// WeddingCompany represents a wedding venue operator
type WeddingCompany struct {
	ID            int64         `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	Address       *string       `db:"address" json:"address"`
	Phone         *string       `db:"phone" json:"phone"`
	Homepage      *string       `db:"homepage" json:"homepage"`
	Accessibility *string       `db:"accessibility" json:"accessibility"`
	Lat           *float64      `db:"lat" json:"lat"`
	Lng           *float64      `db:"lng" json:"lng"`
	CeremonyTimes CeremonyTimes `db:"ceremony_times" json:"ceremony_times"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// Hall represents one hall of a wedding company
type Hall struct {
	ID               int64          `db:"id" json:"id"`
	WeddingCompanyID int64          `db:"wedding_company_id" json:"wedding_company_id"`
	Name             string         `db:"name" json:"name"`
	IntervalMinutes  *int           `db:"interval_minutes" json:"interval_minutes"`
	Guarantees       *int           `db:"guarantees" json:"guarantees"`
	Parking          *int           `db:"parking" json:"parking"`
	Type             pq.StringArray `db:"type" json:"type"`
	Mood             *string        `db:"mood" json:"mood"`
}

// HallPhoto is one persisted photo of a hall gallery. Order 1 is the main
// photo; subs follow densely from 2.
type HallPhoto struct {
	ID        int64   `db:"id" json:"id"`
	HallID    int64   `db:"hall_id" json:"hall_id"`
	URL       string  `db:"url" json:"url"`
	OrderNum  int     `db:"order_num" json:"order_num"`
	Caption   *string `db:"caption" json:"caption"`
	IsVisible bool    `db:"is_visible" json:"is_visible"`
}

// HallInclude is one included item of a hall
type HallInclude struct {
	ID          int64   `db:"id" json:"id"`
	HallID      int64   `db:"hall_id" json:"hall_id"`
	Category    *string `db:"category" json:"category"`
	Subcategory *string `db:"subcategory" json:"subcategory"`
}

// Estimate is the core estimate record
type Estimate struct {
	ID            int64         `db:"id" json:"id"`
	HallID        int64         `db:"hall_id" json:"hall_id"`
	HallPrice     *int64        `db:"hall_price" json:"hall_price"`
	Type          string        `db:"type" json:"type"`
	Date          *time.Time    `db:"date" json:"date"`
	Time          *string       `db:"time" json:"time"`
	Guarantees    *int          `db:"guarantees" json:"guarantees"`
	PenaltyAmount *int64        `db:"penalty_amount" json:"penalty_amount"`
	PenaltyDetail *string       `db:"penalty_detail" json:"penalty_detail"`
	CreatedBy     uuid.NullUUID `db:"created_by" json:"-"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// MealPrice is one meal price line of an estimate
type MealPrice struct {
	ID         int64   `db:"id" json:"id"`
	EstimateID int64   `db:"estimate_id" json:"estimate_id"`
	MealType   *string `db:"meal_type" json:"meal_type"`
	Category   *string `db:"category" json:"category"`
	Price      *int64  `db:"price" json:"price"`
	Extra      *string `db:"extra" json:"extra"`
}

// EstimateOption is one optional line item of an estimate
type EstimateOption struct {
	ID           int64   `db:"id" json:"id"`
	EstimateID   int64   `db:"estimate_id" json:"estimate_id"`
	Name         *string `db:"name" json:"name"`
	Price        *int64  `db:"price" json:"price"`
	IsRequired   bool    `db:"is_required" json:"is_required"`
	Description  *string `db:"description" json:"description"`
	ReferenceURL *string `db:"reference_url" json:"reference_url"`
}

// Etc is a free-form note attached to an estimate
type Etc struct {
	ID         int64   `db:"id" json:"id"`
	EstimateID int64   `db:"estimate_id" json:"estimate_id"`
	Content    *string `db:"content" json:"content"`
}

// WeddingPackage groups studio/dress/makeup items sold with an estimate
type WeddingPackage struct {
	ID           int64   `db:"id" json:"id"`
	EstimateID   int64   `db:"estimate_id" json:"estimate_id"`
	Type         *string `db:"type" json:"type"`
	Name         *string `db:"name" json:"name"`
	TotalPrice   *int64  `db:"total_price" json:"total_price"`
	IsTotalPrice bool    `db:"is_total_price" json:"is_total_price"`
}

// WeddingPackageItem is one item inside a wedding package
type WeddingPackageItem struct {
	ID               int64   `db:"id" json:"id"`
	WeddingPackageID int64   `db:"wedding_package_id" json:"wedding_package_id"`
	Type             *string `db:"type" json:"type"`
	CompanyName      *string `db:"company_name" json:"company_name"`
	Price            *int64  `db:"price" json:"price"`
	Description      *string `db:"description" json:"description"`
	URL              *string `db:"url" json:"url"`
}

// DetailedEstimate is the full estimate graph returned by reads
type DetailedEstimate struct {
	Estimate
	Hall            *Hall             `json:"hall"`
	Company         *WeddingCompany   `json:"wedding_company"`
	HallPhotos      []HallPhoto       `json:"hall_photos"`
	HallIncludes    []HallInclude     `json:"hall_includes"`
	MealPrices      []MealPrice       `json:"meal_prices"`
	EstimateOptions []EstimateOption  `json:"estimate_options"`
	Etcs            []Etc             `json:"etcs"`
	WeddingPackages []DetailedPackage `json:"wedding_packages"`
}

// DetailedPackage is a package with its items
type DetailedPackage struct {
	WeddingPackage
	Items []WeddingPackageItem `json:"wedding_package_items"`
}
