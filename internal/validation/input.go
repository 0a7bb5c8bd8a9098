package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/julianstephens/quitlog/internal/errors"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/utils"
)

// HabitInput is the raw, user-entered form of a habit as it arrives from a
// CLI flag set or a TUI form. All fields are strings so that nothing is
// coerced before validation.
type HabitInput struct {
	Name      string `validate:"required,max=80"`
	Icon      string `validate:"required,max=16"`
	Cost      string `validate:"required,nonneg"`
	CostType  string `validate:"required,oneof=money time health"`
	GoalType  string `validate:"required,oneof=time money"`
	GoalValue string `validate:"required,positive"`
	GoalUnit  string `validate:"omitempty,oneof=hours days weeks months dollars"`
	Date      string `validate:"omitempty,datetime=2006-01-02"`
	Time      string `validate:"omitempty,datetime=15:04"`
}

// RelapseInput is the raw form of a relapse being recorded.
type RelapseInput struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
	Time string `validate:"omitempty,datetime=15:04"`
	Note string `validate:"max=500"`
}

// FieldError is one rejected field with a message fit for the user.
type FieldError struct {
	Field   string
	Message string
}

// InputError lists every rejected field of one submission.
type InputError struct {
	Fields []FieldError
}

func (e *InputError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", apperrors.ErrInvalidInput, strings.Join(msgs, "; "))
}

func (e *InputError) Unwrap() error { return apperrors.ErrInvalidInput }

var (
	errRequired     = errors.New("is required")
	errTooLong      = errors.New("is too long")
	errNonNegative  = errors.New("must be a number of zero or more")
	errPositive     = errors.New("must be a number greater than zero")
	errUnknownValue = errors.New("is not one of the accepted values")
	errDateFormat   = errors.New("must be a date in YYYY-MM-DD format")
	errTimeFormat   = errors.New("must be a time in HH:MM format")
	errUnitMismatch = errors.New("dollars can only be used with money goals")
	errFuture       = errors.New("cannot be in the future")
)

var customErrors = map[string]error{
	"HabitInput.Name.required":      errRequired,
	"HabitInput.Name.max":           errTooLong,
	"HabitInput.Icon.required":      errRequired,
	"HabitInput.Icon.max":           errTooLong,
	"HabitInput.Cost.required":      errRequired,
	"HabitInput.Cost.nonneg":        errNonNegative,
	"HabitInput.CostType.required":  errRequired,
	"HabitInput.CostType.oneof":     errUnknownValue,
	"HabitInput.GoalType.required":  errRequired,
	"HabitInput.GoalType.oneof":     errUnknownValue,
	"HabitInput.GoalValue.required": errRequired,
	"HabitInput.GoalValue.positive": errPositive,
	"HabitInput.GoalUnit.oneof":     errUnknownValue,
	"HabitInput.GoalUnit.unitmatch": errUnitMismatch,
	"HabitInput.Date.datetime":      errDateFormat,
	"HabitInput.Time.datetime":      errTimeFormat,
	"RelapseInput.Date.datetime":    errDateFormat,
	"RelapseInput.Time.datetime":    errTimeFormat,
	"RelapseInput.Note.max":         errTooLong,
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("nonneg", func(fl validator.FieldLevel) bool {
			n, ok := parseFinite(fl.Field().String())
			return ok && n >= 0
		})
		_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
			n, ok := parseFinite(fl.Field().String())
			return ok && n > 0
		})
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			in := sl.Current().Interface().(HabitInput)
			if in.GoalType == string(models.GoalTime) && in.GoalUnit == string(models.UnitDollars) {
				sl.ReportError(in.GoalUnit, "GoalUnit", "GoalUnit", "unitmatch", "")
			}
		}, HabitInput{})
		validate = v
	})
	return validate
}

func parseFinite(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func trimmed(in HabitInput) HabitInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = strings.TrimSpace(in.Icon)
	in.Cost = strings.TrimSpace(in.Cost)
	in.CostType = strings.ToLower(strings.TrimSpace(in.CostType))
	in.GoalType = strings.ToLower(strings.TrimSpace(in.GoalType))
	in.GoalValue = strings.TrimSpace(in.GoalValue)
	in.GoalUnit = strings.ToLower(strings.TrimSpace(in.GoalUnit))
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	return in
}

// ParseHabit validates in and converts it to a Habit with no id or creation
// time. An omitted date/time means now. Rejections return an *InputError.
func ParseHabit(in HabitInput, now time.Time, loc *time.Location) (models.Habit, error) {
	in = trimmed(in)
	if err := getValidator().Struct(in); err != nil {
		return models.Habit{}, toInputError(err)
	}

	lastEngaged, err := utils.CombineDateAndTime(in.Date, in.Time, now, loc)
	if err != nil {
		return models.Habit{}, &InputError{Fields: []FieldError{{Field: "Date", Message: err.Error()}}}
	}
	if lastEngaged.After(now) {
		return models.Habit{}, &InputError{Fields: []FieldError{{Field: "Last engaged", Message: errFuture.Error()}}}
	}

	cost, _ := parseFinite(in.Cost)
	value, _ := parseFinite(in.GoalValue)

	unit := models.GoalUnit(in.GoalUnit)
	if unit == "" {
		unit = models.UnitDays
		if models.GoalType(in.GoalType) == models.GoalMoney {
			unit = models.UnitDollars
		}
	}

	return models.Habit{
		Name:        in.Name,
		Icon:        in.Icon,
		Cost:        cost,
		CostType:    models.CostType(in.CostType),
		LastEngaged: lastEngaged,
		Goal: &models.Goal{
			Type:  models.GoalType(in.GoalType),
			Value: value,
			Unit:  unit,
		},
	}, nil
}

// ParseRelapse validates in and returns the relapse instant and note.
func ParseRelapse(in RelapseInput, now time.Time, loc *time.Location) (time.Time, string, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Note = strings.TrimSpace(in.Note)
	if err := getValidator().Struct(in); err != nil {
		return time.Time{}, "", toInputError(err)
	}

	at, err := utils.CombineDateAndTime(in.Date, in.Time, now, loc)
	if err != nil {
		return time.Time{}, "", &InputError{Fields: []FieldError{{Field: "Date", Message: err.Error()}}}
	}
	if at.After(now) {
		return time.Time{}, "", &InputError{Fields: []FieldError{{Field: "Relapse", Message: errFuture.Error()}}}
	}
	return at, in.Note, nil
}

// FromHabit fills a HabitInput from an existing habit so edit forms start
// with the current values.
func FromHabit(h models.Habit, loc *time.Location) HabitInput {
	goal := ValidateGoal(h.Goal)
	last := h.LastEngaged.In(loc)
	return HabitInput{
		Name:      h.Name,
		Icon:      h.Icon,
		Cost:      strconv.FormatFloat(h.Cost, 'f', -1, 64),
		CostType:  string(h.CostType),
		GoalType:  string(goal.Type),
		GoalValue: strconv.FormatFloat(goal.Value, 'f', -1, 64),
		GoalUnit:  string(goal.Unit),
		Date:      last.Format("2006-01-02"),
		Time:      last.Format("15:04"),
	}
}

func toInputError(err error) error {
	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	out := &InputError{}
	for _, e := range validationErr {
		key := e.StructNamespace() + "." + e.Tag()
		msg := "is invalid"
		if v, ok := customErrors[key]; ok {
			msg = v.Error()
		}
		out.Fields = append(out.Fields, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}
