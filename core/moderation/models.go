package moderation

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
)

// Statuses. A report starts pending and moves exactly once to one of the
// terminal states; there is no way back to pending.
const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Reason codes
const (
	ReasonSpam          = "spam"
	ReasonHarassment    = "harassment"
	ReasonInappropriate = "inappropriate"
	ReasonScam          = "scam"
	ReasonOther         = "other"
)

var (
	ErrInvalidTransition = errors.New("report already closed")

	reasons = []string{ReasonSpam, ReasonHarassment, ReasonInappropriate, ReasonScam, ReasonOther}
)

type Status string

func (s Status) Terminal() bool {
	return s == StatusReviewed || s == StatusResolved || s == StatusDismissed
}

// CanTransitionTo reports whether the status may move to target. Only
// pending → {reviewed, resolved, dismissed} is legal.
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusPending && target.Terminal()
}

// Report is a user-submitted complaint against a piece of content or another
// user.
type Report struct {
	ID          string    `json:"id"`
	ReporterID  string    `json:"reporter_id"`
	TargetID    string    `json:"target_id"`    // the user being reported
	ContentRef  string    `json:"content_ref"`  // e.g. "marketplace_items/<id>", "chat_messages/<id>"
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	ReviewerID  string    `json:"reviewer_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	ReviewedAt  time.Time `json:"reviewed_at,omitempty"` // UTC; zero until reviewed
	CreatedAt   time.Time `json:"created_at"`            // UTC
	UpdatedAt   time.Time `json:"updated_at"`            // UTC
}

// Review applies a moderator decision. It fails with ErrInvalidTransition
// when the report is already in a terminal state.
func (r *Report) Review(reviewerID string, target Status, notes string, now time.Time) error {
	if !r.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	r.Status = target
	r.ReviewerID = reviewerID
	r.Notes = notes
	r.ReviewedAt = now.UTC()
	r.UpdatedAt = now.UTC()
	return nil
}

// NewReport contains information needed to file a new Report.
type NewReport struct {
	TargetID    string `json:"target_id" validate:"required"`
	ContentRef  string `json:"content_ref"`
	Reason      string `json:"reason" validate:"required,reportreason"`
	Description string `json:"description"`
}

func (nr *NewReport) Validate(validate *validator.Validate) error {
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}

// ReviewReport is a moderator's decision payload.
type ReviewReport struct {
	Status Status `json:"status" validate:"required,reportclose"`
	Notes  string `json:"notes"`
}

func (rr *ReviewReport) Validate(validate *validator.Validate) error {
	rr.Notes = core.CleanString(rr.Notes)
	return validate.Struct(rr)
}

var (
	reasonTag  = "reportreason"
	reasonText = "invalid report reason"
	closeTag   = "reportclose"
	closeText  = "status must be one of reviewed, resolved or dismissed"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(reasonTag, func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, r := range reasons {
			if r == val {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, reasonTag, reasonText)

	_ = validate.RegisterValidation(closeTag, func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Terminal()
	})
	core.RegisterCustomTranslation(validate, translator, closeTag, closeText)
}
