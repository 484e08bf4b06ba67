package market

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/malezi/core"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusRemoved Status = "removed"
)

type Category string

const (
	CategoryToys     Category = "toys"
	CategoryBooks    Category = "books"
	CategoryTherapy  Category = "therapy"
	CategoryMobility Category = "mobility"
	CategoryClothing Category = "clothing"
	CategoryOther    Category = "other"
)

var categories = []Category{
	CategoryToys, CategoryBooks, CategoryTherapy,
	CategoryMobility, CategoryClothing, CategoryOther,
}

type (
	// Item is a marketplace listing.
	Item struct {
		ID          string    `json:"id"`
		SellerID    string    `json:"seller_id"`
		Title       string    `json:"title"`
		Description string    `json:"description,omitempty"`
		PriceCents  int       `json:"price_cents"`
		Category    Category  `json:"category"`
		Status      Status    `json:"status"`
		CreatedAt   time.Time `json:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at"` // UTC
	}

	NewItem struct {
		Title       string   `json:"title" validate:"required,max=255"`
		Description string   `json:"description" validate:"max=4000"`
		PriceCents  int      `json:"price_cents" validate:"gte=0"`
		Category    Category `json:"category" validate:"required,marketcategory"`
	}

	UpdateItem struct {
		Title       string   `json:"title" validate:"omitempty,max=255"`
		Description *string  `json:"description" validate:"omitempty,max=4000"`
		PriceCents  *int     `json:"price_cents" validate:"omitempty,gte=0"`
		Category    Category `json:"category" validate:"omitempty,marketcategory"`
		Status      Status   `json:"status" validate:"omitempty,oneof=active sold removed"`
	}

	// Review is one user's rating of an item. A user reviews an item at
	// most once.
	Review struct {
		ID        string    `json:"id"`
		ItemID    string    `json:"item_id"`
		UserID    string    `json:"user_id"`
		Rating    int       `json:"rating"`
		Comment   string    `json:"comment,omitempty"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	NewReview struct {
		Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
		Comment string `json:"comment" validate:"max=2000"`
	}

	Favorite struct {
		UserID    string    `json:"user_id"`
		ItemID    string    `json:"item_id"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	QueryFilter struct {
		Search   string
		Category Category
		Status   Status
		SellerID string
		MinPrice *int
		MaxPrice *int
	}
)

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Title = strings.TrimSpace(ni.Title)
	ni.Description = strings.TrimSpace(ni.Description)
	if err := validate.Struct(ni); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func (ui *UpdateItem) Validate(validate *validator.Validate) error {
	ui.Title = strings.TrimSpace(ui.Title)
	if err := validate.Struct(ui); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Comment = strings.TrimSpace(nr.Comment)
	if err := validate.Struct(nr); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func InitValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("marketcategory", func(fl validator.FieldLevel) bool {
		val := Category(fl.Field().String())
		for _, c := range categories {
			if val == c {
				return true
			}
		}
		return false
	})
}
