package advisorController

import (
	"context"

	. "advisorapi/internal/models"
	"advisorapi/internal/repositories"
	"advisorapi/internal/utils"
)

const (
	ReasonIDExists       = "an advisor with this id already exists."
	ReasonNameRequired   = "name is required."
	ReasonSINLength      = "sin must be exactly 9 characters long."
	ReasonSINUnique      = "sin must be unique."
	ReasonPhoneLength    = "phone number must be exactly 8 characters long."
	ReasonNameTooLong    = "name cannot be longer than 255 characters."
	ReasonAddressTooLong = "address cannot be longer than 255 characters."
)

// ValidationError carries the first rule a create candidate broke.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// Validate checks a create candidate against the store. Rules run in order and
// the first failure is returned. Store errors are returned as they are.
func Validate(ctx context.Context, repo repositories.AdvisorRepository, candidate Advisor) error {
	exists, err := repo.ExistsByField(ctx, repositories.FieldID, candidate.ID)
	if err != nil {
		return err
	}
	if exists {
		return invalid(ReasonIDExists)
	}

	if utils.IsBlank(candidate.Name) {
		return invalid(ReasonNameRequired)
	}

	if !utils.HasExactLength(candidate.SIN, utils.SINLength) {
		return invalid(ReasonSINLength)
	}

	exists, err = repo.ExistsByField(ctx, repositories.FieldSIN, candidate.SIN)
	if err != nil {
		return err
	}
	if exists {
		return invalid(ReasonSINUnique)
	}

	if !utils.HasExactLength(candidate.Phone, utils.PhoneLength) {
		return invalid(ReasonPhoneLength)
	}

	if utils.ExceedsMaxLength(candidate.Name, utils.MaxFieldLength) {
		return invalid(ReasonNameTooLong)
	}

	if utils.ExceedsMaxLength(candidate.Address, utils.MaxFieldLength) {
		return invalid(ReasonAddressTooLong)
	}

	return nil
}
