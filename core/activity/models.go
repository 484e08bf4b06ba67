package activity

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/malezi/core"
)

type Category string

const (
	CategoryMeal     Category = "meal"
	CategorySleep    Category = "sleep"
	CategoryHygiene  Category = "hygiene"
	CategoryTherapy  Category = "therapy"
	CategoryBehavior Category = "behavior"
	CategoryOther    Category = "other"
)

var categories = []Category{
	CategoryMeal, CategorySleep, CategoryHygiene,
	CategoryTherapy, CategoryBehavior, CategoryOther,
}

type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodCalm    Mood = "calm"
	MoodTired   Mood = "tired"
	MoodUpset   Mood = "upset"
	MoodAnxious Mood = "anxious"
)

var moods = []Mood{MoodHappy, MoodCalm, MoodTired, MoodUpset, MoodAnxious}

type (
	// Log is a single recorded activity for a child.
	Log struct {
		ID         string    `json:"id"`
		OwnerID    string    `json:"owner_id"`
		ChildName  string    `json:"child_name"`
		Category   Category  `json:"category"`
		Mood       Mood      `json:"mood,omitempty"`
		Notes      string    `json:"notes,omitempty"`
		OccurredAt time.Time `json:"occurred_at"` // UTC
		CreatedAt  time.Time `json:"created_at"`  // UTC
	}

	NewLog struct {
		ChildName  string    `json:"child_name" validate:"required,max=255"`
		Category   Category  `json:"category" validate:"required,logcategory"`
		Mood       Mood      `json:"mood" validate:"omitempty,logmood"`
		Notes      string    `json:"notes" validate:"max=2000"`
		OccurredAt time.Time `json:"occurred_at" validate:"required"`
	}

	// Routine is a recurring set of steps a family follows.
	Routine struct {
		ID          string    `json:"id"`
		OwnerID     string    `json:"owner_id"`
		Title       string    `json:"title"`
		Description string    `json:"description,omitempty"`
		Schedule    string    `json:"schedule,omitempty"` // free-form, e.g. "weekdays 07:30"
		Steps       []string  `json:"steps"`
		IsActive    *bool     `json:"is_active"`
		CreatedAt   time.Time `json:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at"` // UTC
	}

	NewRoutine struct {
		Title       string   `json:"title" validate:"required,max=255"`
		Description string   `json:"description" validate:"max=2000"`
		Schedule    string   `json:"schedule" validate:"max=255"`
		Steps       []string `json:"steps" validate:"max=50,dive,required,max=500"`
	}

	UpdateRoutine struct {
		Title       string   `json:"title" validate:"omitempty,max=255"`
		Description *string  `json:"description" validate:"omitempty,max=2000"`
		Schedule    *string  `json:"schedule" validate:"omitempty,max=255"`
		Steps       []string `json:"steps" validate:"omitempty,max=50,dive,required,max=500"`
		IsActive    *bool    `json:"is_active"`
	}

	QueryFilter struct {
		Category Category
		Since    time.Time
		Until    time.Time
	}
)

func (nl *NewLog) Validate(validate *validator.Validate) error {
	nl.ChildName = strings.TrimSpace(nl.ChildName)
	nl.Notes = strings.TrimSpace(nl.Notes)
	if err := validate.Struct(nl); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func (nr *NewRoutine) Validate(validate *validator.Validate) error {
	nr.Title = strings.TrimSpace(nr.Title)
	if err := validate.Struct(nr); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func (ur *UpdateRoutine) Validate(validate *validator.Validate) error {
	ur.Title = strings.TrimSpace(ur.Title)
	if err := validate.Struct(ur); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func InitValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("logcategory", func(fl validator.FieldLevel) bool {
		val := Category(fl.Field().String())
		for _, c := range categories {
			if val == c {
				return true
			}
		}
		return false
	})
	_ = validate.RegisterValidation("logmood", func(fl validator.FieldLevel) bool {
		val := Mood(fl.Field().String())
		for _, m := range moods {
			if val == m {
				return true
			}
		}
		return false
	})
}
