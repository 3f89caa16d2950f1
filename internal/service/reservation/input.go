package reservation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/venuehub/reservations/internal/domain"
)

// QuoteInput is a proposed reservation as it arrives from callers. Dates and
// times stay strings until they pass shape validation.
type QuoteInput struct {
	ResourceID string `json:"-" validate:"required,max=64"`
	Date       string `json:"date" validate:"required,calendar_date"`
	Start      string `json:"start" validate:"required,time_of_day"`
	End        string `json:"end" validate:"required,time_of_day"`
	GuestCount int    `json:"guest_count"`
}

type CommitInput struct {
	QuoteInput
	HolderID string `json:"holder_id" validate:"required,max=128"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("time_of_day", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	return v
}

// checkShape runs struct tag validation and reports the failing fields as
// ErrInvalidInput.
func checkShape(v *validator.Validate, input interface{}) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
}

type proposal struct {
	date       domain.Date
	rng        domain.TimeRange
	guestCount int
}

func parseProposal(in QuoteInput) (proposal, error) {
	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return proposal{}, err
	}
	start, err := domain.ParseTimeOfDay(in.Start)
	if err != nil {
		return proposal{}, err
	}
	end, err := domain.ParseTimeOfDay(in.End)
	if err != nil {
		return proposal{}, err
	}
	return proposal{date: date, rng: domain.TimeRange{Start: start, End: end}, guestCount: in.GuestCount}, nil
}
