package record

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

// Field names accepted by ApplyEdit; they match the JSON keys of the record
const (
	FieldCompanyName        = "companyName"
	FieldCompanyAddress     = "companyAddress"
	FieldCompanyPhone       = "companyPhone"
	FieldBusinessNumber     = "businessNumber"
	FieldRepresentativeName = "representativeName"
	FieldCaregiverName      = "caregiverName"
	FieldCaregiverBirthDate = "caregiverBirthDate"
	FieldPatientName        = "patientName"
	FieldPatientBirthDate   = "patientBirthDate"
	FieldProtectorIDNumber  = "protectorIdNumber"
	FieldHospitalName       = "hospitalName"
	FieldStartDate          = "startDate"
	FieldEndDate            = "endDate"
	FieldTotalDays          = "totalDays"
	FieldDailyRate          = "dailyRate"
	FieldTotalAmount        = "totalAmount"
	FieldIssueDate          = "issueDate"
)

type textSetter func(r *entity.CaregiverRecord, v string)
type numberSetter func(r *entity.CaregiverRecord, v int64)

var textFields = map[string]textSetter{
	FieldCompanyName:        func(r *entity.CaregiverRecord, v string) { r.CompanyName = v },
	FieldCompanyAddress:     func(r *entity.CaregiverRecord, v string) { r.CompanyAddress = v },
	FieldCompanyPhone:       func(r *entity.CaregiverRecord, v string) { r.CompanyPhone = v },
	FieldBusinessNumber:     func(r *entity.CaregiverRecord, v string) { r.BusinessNumber = v },
	FieldRepresentativeName: func(r *entity.CaregiverRecord, v string) { r.RepresentativeName = v },
	FieldCaregiverName:      func(r *entity.CaregiverRecord, v string) { r.CaregiverName = v },
	FieldCaregiverBirthDate: func(r *entity.CaregiverRecord, v string) { r.CaregiverBirthDate = v },
	FieldPatientName:        func(r *entity.CaregiverRecord, v string) { r.PatientName = v },
	FieldPatientBirthDate:   func(r *entity.CaregiverRecord, v string) { r.PatientBirthDate = v },
	FieldProtectorIDNumber:  func(r *entity.CaregiverRecord, v string) { r.ProtectorIDNumber = v },
	FieldHospitalName:       func(r *entity.CaregiverRecord, v string) { r.HospitalName = v },
	FieldStartDate:          func(r *entity.CaregiverRecord, v string) { r.StartDate = v },
	FieldEndDate:            func(r *entity.CaregiverRecord, v string) { r.EndDate = v },
	FieldIssueDate:          func(r *entity.CaregiverRecord, v string) { r.IssueDate = v },
}

var numberFields = map[string]numberSetter{
	FieldTotalDays:   func(r *entity.CaregiverRecord, v int64) { r.TotalDays = v },
	FieldDailyRate:   func(r *entity.CaregiverRecord, v int64) { r.DailyRate = v },
	FieldTotalAmount: func(r *entity.CaregiverRecord, v int64) { r.TotalAmount = v },
}

// IsField reports whether name is an editable record field
func IsField(name string) bool {
	if _, ok := textFields[name]; ok {
		return true
	}
	_, ok := numberFields[name]
	return ok
}

// ApplyEdit sets one field on r and re-runs the derived-field rules:
//
//	startDate/endDate -> totalDays, then totalAmount when dailyRate is set
//	dailyRate         -> totalAmount when totalDays is set
//	totalDays/totalAmount are manual overrides and trigger nothing
func ApplyEdit(r *entity.CaregiverRecord, field string, value interface{}) error {
	if !IsField(field) {
		return apperr.Validation("알 수 없는 항목입니다: %s", field)
	}

	if set, ok := textFields[field]; ok {
		s, err := toText(value)
		if err != nil {
			return apperr.Validation("%s: 문자열 값이 필요합니다.", field)
		}
		set(r, s)
		if field == FieldStartDate || field == FieldEndDate {
			recalcDays(r)
		}
		return nil
	}

	set := numberFields[field]
	n, err := toWhole(value)
	if err != nil {
		return apperr.Validation("%s: 0 이상의 정수를 입력해 주세요.", field)
	}
	set(r, n)

	if field == FieldDailyRate && r.TotalDays != 0 {
		r.TotalAmount = ComputeAmount(r.DailyRate, r.TotalDays)
	}
	return nil
}

// recalcDays applies the date-edit rule: days first, then amount
func recalcDays(r *entity.CaregiverRecord) {
	days, ok := ComputeDays(r.StartDate, r.EndDate)
	if !ok {
		return
	}
	r.TotalDays = days
	if r.DailyRate != 0 {
		r.TotalAmount = ComputeAmount(r.DailyRate, days)
	}
}

func toText(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case time.Time:
		return v.Format(entity.DateLayout), nil
	}
	return cast.ToStringE(value)
}

var errNotWhole = apperr.Validation("not a whole non-negative number")

// toWhole accepts a decimal string or a JSON number; "" is zero
func toWhole(value interface{}) (int64, error) {
	var n int64
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, errNotWhole
		}
		n = int64(v)
	case bool:
		return 0, errNotWhole
	default:
		converted, err := cast.ToInt64E(value)
		if err != nil {
			return 0, err
		}
		n = converted
	}
	if n < 0 {
		return 0, errNotWhole
	}
	return n, nil
}
