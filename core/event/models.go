package event

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/malezi/core"
)

// Categories
const (
	CategoryAppointment Category = "appointment"
	CategoryMedication  Category = "medication"
	CategoryTherapy     Category = "therapy"
	CategoryOther       Category = "other"
)

// Recurrences
const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

type (
	Category   string
	Recurrence string
)

var categoryLabels = map[Category]string{
	CategoryAppointment: "Appointment",
	CategoryMedication:  "Medication",
	CategoryTherapy:     "Therapy",
	CategoryOther:       "Reminder",
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryOther]
}

// Event is a calendar entry owned by a single user. The reminder path never
// hard-deletes events; completion flips the flag.
type Event struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Category     Category   `json:"category"`
	StartTime    time.Time  `json:"start_time"` // UTC
	EndTime      time.Time  `json:"end_time"`   // UTC; zero when open-ended
	RemindBefore int        `json:"remind_before"` // minutes before start; 0 disables reminders
	Completed    bool       `json:"completed"`
	Recurrence   Recurrence `json:"recurrence"`
	CreatedAt    time.Time  `json:"created_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at"` // UTC
}

// NextOccurrence returns the first occurrence of the event that strictly
// follows `after`. For non-recurring events this is the start time itself,
// even when past.
func (e Event) NextOccurrence(after time.Time) time.Time {
	occ := e.StartTime
	if occ.IsZero() || e.Recurrence == RecurrenceNone {
		return occ
	}
	for !occ.After(after) {
		switch e.Recurrence {
		case RecurrenceDaily:
			occ = occ.AddDate(0, 0, 1)
		case RecurrenceWeekly:
			occ = occ.AddDate(0, 0, 7)
		case RecurrenceMonthly:
			occ = occ.AddDate(0, 1, 0)
		default:
			return occ
		}
	}
	return occ
}

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Category     Category   `json:"category" validate:"required,eventcategory"`
	StartTime    time.Time  `json:"start_time" validate:"required"`
	EndTime      time.Time  `json:"end_time"`
	RemindBefore int        `json:"remind_before" validate:"gte=0"`
	Recurrence   Recurrence `json:"recurrence" validate:"omitempty,eventrecurrence"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Location = core.CleanString(ne.Location)
	return validate.Struct(ne)
}

// UpdateEvent defines what information may be provided to modify an existing Event.
type UpdateEvent struct {
	Title        string      `json:"title"`
	Description  *string     `json:"description"`
	Location     *string     `json:"location"`
	Category     Category    `json:"category" validate:"omitempty,eventcategory"`
	StartTime    time.Time   `json:"start_time"`
	EndTime      *time.Time  `json:"end_time"`
	RemindBefore *int        `json:"remind_before" validate:"omitempty,gte=0"`
	Recurrence   *Recurrence `json:"recurrence"`
}

func (ue *UpdateEvent) Validate(orig Event, validate *validator.Validate) error {
	title := core.CleanString(ue.Title)
	if title != "" {
		ue.Title = title
	} else {
		ue.Title = orig.Title
	}
	if ue.Category == "" {
		ue.Category = orig.Category
	}
	if ue.StartTime.IsZero() {
		ue.StartTime = orig.StartTime
	}
	return validate.Struct(ue)
}

type QueryFilter struct {
	Search    string    `query:"search"`
	Category  Category  `query:"category"`
	Completed *bool     `query:"completed"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.Completed == nil && qf.From.IsZero() && qf.To.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

var (
	categoryTag    = "eventcategory"
	categoryText   = "invalid event category"
	recurrenceTag  = "eventrecurrence"
	recurrenceText = "invalid recurrence"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		switch Category(fl.Field().String()) {
		case CategoryAppointment, CategoryMedication, CategoryTherapy, CategoryOther:
			return true
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(recurrenceTag, func(fl validator.FieldLevel) bool {
		switch Recurrence(fl.Field().String()) {
		case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
			return true
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, recurrenceTag, recurrenceText)
}
