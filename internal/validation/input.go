package validation

import (
	"regexp"
	"strings"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Required rejects blank values
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.Validation("%s is required", field)
	}
	return nil
}

// Email checks the address has a local part, a domain and a dot in the domain
func Email(email string) error {
	if err := Required("email", email); err != nil {
		return err
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return apperrors.Validation("%q is not a valid email address", email)
	}
	return nil
}

// Password enforces the minimum length
func Password(password string) error {
	if len(password) < constants.MinPasswordLength {
		return apperrors.Validation("password must be at least %d characters", constants.MinPasswordLength)
	}
	return nil
}

// PasswordsMatch checks a confirmation entry
func PasswordsMatch(password, confirm string) error {
	if password != confirm {
		return apperrors.Validation("passwords do not match")
	}
	return nil
}

// Registration validates a sign-up form
func Registration(name, email, password string) error {
	if err := Required("name", name); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	return Password(password)
}

// GoalPeriod accepts the day counts offered when creating a habit goal
func GoalPeriod(days int) error {
	switch days {
	case constants.GoalPeriodWeek, constants.GoalPeriodMonth, constants.GoalPeriodQuarter:
		return nil
	default:
		return apperrors.Validation("goal period must be %d, %d or %d days",
			constants.GoalPeriodWeek, constants.GoalPeriodMonth, constants.GoalPeriodQuarter)
	}
}
