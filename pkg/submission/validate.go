package submission

import (
	"fmt"

	"github.com/npda-audit/platform/pkg/common/models"
)

// ValidatePatient runs the identity and demographic data-quality checks a
// patient record must pass before it can count towards any measure.
// Returned strings are submission-facing error messages; an empty slice
// means the record is clean.
func ValidatePatient(p *models.Patient) []string {
	var errs []string

	hasNHS := p.NHSNumber != ""
	hasURN := p.UniqueReferenceNumber != ""
	switch {
	case !hasNHS && !hasURN:
		errs = append(errs, "patient must carry an NHS number or a unique reference number")
	case hasNHS && hasURN:
		errs = append(errs, "patient must carry exactly one of NHS number and unique reference number")
	case hasNHS && !ValidNHSNumber(p.NHSNumber):
		errs = append(errs, fmt.Sprintf("NHS number %s fails the check digit", p.NHSNumber))
	}

	if p.DateOfBirth == nil {
		errs = append(errs, "date of birth is required")
	}
	if p.DiagnosisDate == nil {
		errs = append(errs, "diagnosis date is required")
	}
	if p.DateOfBirth != nil && p.DiagnosisDate != nil && p.DiagnosisDate.Before(*p.DateOfBirth) {
		errs = append(errs, "diagnosis date is before date of birth")
	}
	if p.DateOfBirth != nil && p.DeathDate != nil && p.DeathDate.Before(*p.DateOfBirth) {
		errs = append(errs, "death date is before date of birth")
	}
	if p.PDUCode == "" {
		errs = append(errs, "paediatric diabetes unit code is required")
	}

	for i := range p.Visits {
		if p.Visits[i].VisitDate == nil {
			errs = append(errs, fmt.Sprintf("visit %d has no visit date", i+1))
		}
	}

	return errs
}
