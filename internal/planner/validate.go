package planner

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Normalize canonicalizes enum spelling ("nearby" -> "Nearby") and fills the
// optional enums with their defaults.
func (p Preferences) Normalize() Preferences {
	p.Area = strings.TrimSpace(p.Area)
	p.TimeOfDay = TimeOfDay(canonical(string(p.TimeOfDay), string(TimeDaytime), string(TimeNighttime), string(TimeBoth)))
	if p.TimeOfDay == "" {
		p.TimeOfDay = TimeBoth
	}
	p.Budget = Budget(canonical(string(p.Budget), string(BudgetFree), string(BudgetBudget), string(BudgetMidRange), string(BudgetPremium), string(BudgetAny)))
	if p.Budget == "" {
		p.Budget = BudgetAny
	}
	p.Intensity = Intensity(canonical(string(p.Intensity), string(IntensityLow), string(IntensityModerate), string(IntensityHigh)))
	p.Distance = DistancePreference(canonical(string(p.Distance), string(DistanceNearby), string(DistanceModerate), string(DistanceFar)))

	companions := make([]string, 0, len(p.Companions))
	for _, c := range p.Companions {
		companions = append(companions, canonical(c, CompanionSolo, CompanionPartner, CompanionFamily, CompanionFriends, CompanionGroup, CompanionAny))
	}
	p.Companions = companions
	return p
}

// MaxTripDays bounds the length of a single itinerary.
const MaxTripDays = 366

func exceedsMaxTrip(start, end Date) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return end.After(start.AddDays(MaxTripDays - 1))
}

// Validate reports every problem with p. Call Normalize first.
func (p Preferences) Validate() error {
	var problems []string

	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return &ValidationError{Problems: []string{err.Error()}}
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}

	if p.StartDate.IsZero() {
		problems = append(problems, "start_date is required")
	}
	if p.EndDate.IsZero() {
		problems = append(problems, "end_date is required")
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.StartDate.After(p.EndDate) {
		problems = append(problems, "start_date must not be after end_date")
	}
	if exceedsMaxTrip(p.StartDate, p.EndDate) {
		problems = append(problems, fmt.Sprintf("trips are limited to %d days", MaxTripDays))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s value(s)", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s %q must be one of %s", field, fmt.Sprint(fe.Value()), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func canonical(value string, known ...string) string {
	v := strings.TrimSpace(value)
	for _, k := range known {
		if strings.EqualFold(v, k) {
			return k
		}
	}
	return v
}
