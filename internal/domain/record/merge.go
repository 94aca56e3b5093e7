package record

import (
	"time"

	"github.com/garyjia/caredoc/internal/domain/entity"
)

// New returns a blank record carrying the issuer profile and today's date
func New(profile entity.CompanyProfile, now time.Time) entity.CaregiverRecord {
	r := entity.CaregiverRecord{IssueDate: entity.TodayKST(now)}
	r.ApplyCompanyProfile(profile)
	return r
}

// Merge folds an extraction result into current. Extracted keys overwrite,
// except the issuer fields and issueDate, which only overwrite when the
// extracted value is non-empty. Extracted dates are treated as a date edit,
// and a known rate and day count always win over an extracted total.
func Merge(current entity.CaregiverRecord, p *entity.PartialRecord) entity.CaregiverRecord {
	merged := current
	if p == nil {
		return merged
	}

	keepUnlessEmpty(&merged.CompanyName, p.CompanyName)
	keepUnlessEmpty(&merged.CompanyAddress, p.CompanyAddress)
	keepUnlessEmpty(&merged.CompanyPhone, p.CompanyPhone)
	keepUnlessEmpty(&merged.BusinessNumber, p.BusinessNumber)
	keepUnlessEmpty(&merged.RepresentativeName, p.RepresentativeName)
	keepUnlessEmpty(&merged.IssueDate, p.IssueDate)

	overwrite(&merged.CaregiverName, p.CaregiverName)
	overwrite(&merged.CaregiverBirthDate, p.CaregiverBirthDate)
	overwrite(&merged.PatientName, p.PatientName)
	overwrite(&merged.PatientBirthDate, p.PatientBirthDate)
	overwrite(&merged.ProtectorIDNumber, p.ProtectorIDNumber)
	overwrite(&merged.HospitalName, p.HospitalName)
	overwrite(&merged.StartDate, p.StartDate)
	overwrite(&merged.EndDate, p.EndDate)

	if p.TotalDays != nil {
		merged.TotalDays = nonNegative(*p.TotalDays)
	}
	if p.DailyRate != nil {
		merged.DailyRate = nonNegative(*p.DailyRate)
	}
	if p.TotalAmount != nil {
		merged.TotalAmount = nonNegative(*p.TotalAmount)
	}

	if p.StartDate != nil || p.EndDate != nil {
		if days, ok := ComputeDays(merged.StartDate, merged.EndDate); ok {
			merged.TotalDays = days
		}
	}
	if merged.DailyRate != 0 && merged.TotalDays != 0 {
		merged.TotalAmount = ComputeAmount(merged.DailyRate, merged.TotalDays)
	}
	return merged
}

func keepUnlessEmpty(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func overwrite(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
