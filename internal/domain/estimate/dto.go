package estimate

import "time"

// CompanyInput carries wedding company fields of a write request
type CompanyInput struct {
	Name          string         `json:"name" validate:"required,max=200"`
	Address       *string        `json:"address" validate:"omitempty,max=500"`
	Phone         *string        `json:"phone" validate:"omitempty,max=50"`
	Homepage      *string        `json:"homepage" validate:"omitempty,max=500"`
	Accessibility *string        `json:"accessibility" validate:"omitempty,max=1000"`
	Lat           *float64       `json:"lat" validate:"omitempty,latitude"`
	Lng           *float64       `json:"lng" validate:"omitempty,longitude"`
	CeremonyTimes []CeremonyTime `json:"ceremony_times" validate:"omitempty,dive"`
}

// HallInput carries hall fields of a write request
type HallInput struct {
	Name            string   `json:"name" validate:"required,max=200"`
	IntervalMinutes *int     `json:"interval_minutes" validate:"omitempty,min=0"`
	Guarantees      *int     `json:"guarantees" validate:"omitempty,min=0"`
	Parking         *int     `json:"parking" validate:"omitempty,min=0"`
	Type            []string `json:"type" validate:"omitempty,dive,hall_type"`
	Mood            *string  `json:"mood" validate:"omitempty,hall_mood"`
}

// HallIncludeInput is one included item of a hall
type HallIncludeInput struct {
	Category    *string `json:"category" validate:"omitempty,max=200"`
	Subcategory *string `json:"subcategory" validate:"omitempty,max=500"`
}

// EstimateInput carries estimate fields of a write request
type EstimateInput struct {
	HallPrice     *int64  `json:"hall_price" validate:"omitempty,min=0"`
	Date          *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time          *string `json:"time" validate:"omitempty,max=20"`
	Guarantees    *int    `json:"guarantees" validate:"omitempty,min=0"`
	PenaltyAmount *int64  `json:"penalty_amount" validate:"omitempty,min=0"`
	PenaltyDetail *string `json:"penalty_detail" validate:"omitempty,max=2000"`
}

// MealPriceInput is one meal price line
type MealPriceInput struct {
	MealType *string `json:"meal_type" validate:"omitempty,max=100"`
	Category *string `json:"category" validate:"omitempty,meal_category"`
	Price    *int64  `json:"price" validate:"omitempty,min=0"`
	Extra    *string `json:"extra" validate:"omitempty,max=1000"`
}

// EstimateOptionInput is one optional line item
type EstimateOptionInput struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	Price        *int64  `json:"price" validate:"omitempty,min=0"`
	IsRequired   bool    `json:"is_required"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	ReferenceURL *string `json:"reference_url" validate:"omitempty,max=500"`
}

// EtcInput is one free-form note
type EtcInput struct {
	Content *string `json:"content" validate:"omitempty,max=2000"`
}

// PackageItemInput is one item of a wedding package
type PackageItemInput struct {
	Type        *string `json:"type" validate:"omitempty,package_item_type"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
	Price       *int64  `json:"price" validate:"omitempty,min=0"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	URL         *string `json:"url" validate:"omitempty,max=500"`
}

// PackageInput is one wedding package with its items
type PackageInput struct {
	Type         *string            `json:"type" validate:"omitempty,package_type"`
	Name         *string            `json:"name" validate:"omitempty,max=200"`
	TotalPrice   *int64             `json:"total_price" validate:"omitempty,min=0"`
	IsTotalPrice bool               `json:"is_total_price"`
	Items        []PackageItemInput `json:"items" validate:"omitempty,dive"`
}

// PhotoPlanEntry describes one photo of the desired gallery, in display
// order. The first entry is the main photo. An entry names either an
// existing photo by id or a staged upload by its multipart field name,
// never both.
type PhotoPlanEntry struct {
	ID        *int64 `json:"id,omitempty"`
	FileField string `json:"file,omitempty"`
	Caption   string `json:"caption,omitempty"`
	IsVisible *bool  `json:"is_visible,omitempty"`
}

// WriteRequest is the payload part of a multipart create or update request
type WriteRequest struct {
	Company         CompanyInput          `json:"company" validate:"required"`
	Hall            HallInput             `json:"hall" validate:"required"`
	HallIncludes    []HallIncludeInput    `json:"hall_includes" validate:"omitempty,dive"`
	Estimate        EstimateInput         `json:"estimate"`
	MealPrices      []MealPriceInput      `json:"meal_prices" validate:"omitempty,dive"`
	EstimateOptions []EstimateOptionInput `json:"estimate_options" validate:"omitempty,dive"`
	Etcs            []EtcInput            `json:"etcs" validate:"omitempty,dive"`
	WeddingPackages []PackageInput        `json:"wedding_packages" validate:"omitempty,dive"`
	Photos          []PhotoPlanEntry      `json:"photos" validate:"required,min=1,dive"`
}

// ListItem is one row of the estimate list
type ListItem struct {
	ID           int64      `db:"id" json:"id"`
	Type         string     `db:"type" json:"type"`
	HallID       int64      `db:"hall_id" json:"hall_id"`
	HallName     string     `db:"hall_name" json:"hall_name"`
	CompanyID    int64      `db:"company_id" json:"company_id"`
	CompanyName  string     `db:"company_name" json:"company_name"`
	Address      *string    `db:"address" json:"address"`
	HallPrice    *int64     `db:"hall_price" json:"hall_price"`
	Date         *time.Time `db:"date" json:"date"`
	MainPhotoURL *string    `db:"main_photo_url" json:"main_photo_url"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ListResponse is the paginated estimate list
type ListResponse struct {
	Estimates []ListItem `json:"estimates"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}
