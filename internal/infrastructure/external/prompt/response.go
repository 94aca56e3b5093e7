package prompt

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"

	"github.com/spf13/cast"

	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

// StripCodeFence removes markdown ``` fences a model may wrap its JSON in
func StripCodeFence(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

// LogPrefix returns at most max runes of a model response for logging, with
// every digit masked so ID and phone numbers never reach the logs.
func LogPrefix(content string, max int) string {
	var b strings.Builder
	n := 0
	for _, r := range content {
		if n == max {
			b.WriteString("...")
			break
		}
		if unicode.IsDigit(r) {
			r = '*'
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// ParseRecord decodes a model response into a partial record. Keys the
// model did not return stay nil; JSON null counts as not returned. Numbers
// may come back as JSON numbers or as digit strings with separators.
func ParseRecord(content string) (*entity.PartialRecord, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &raw); err != nil {
		return nil, apperr.Parse(err, apperr.MsgParseFailed)
	}

	p := &entity.PartialRecord{}
	texts := map[string]**string{
		"companyName":        &p.CompanyName,
		"companyAddress":     &p.CompanyAddress,
		"companyPhone":       &p.CompanyPhone,
		"businessNumber":     &p.BusinessNumber,
		"representativeName": &p.RepresentativeName,
		"caregiverName":      &p.CaregiverName,
		"caregiverBirthDate": &p.CaregiverBirthDate,
		"patientName":        &p.PatientName,
		"patientBirthDate":   &p.PatientBirthDate,
		"protectorIdNumber":  &p.ProtectorIDNumber,
		"hospitalName":       &p.HospitalName,
		"startDate":          &p.StartDate,
		"endDate":            &p.EndDate,
		"issueDate":          &p.IssueDate,
	}
	numbers := map[string]**int64{
		"totalDays":   &p.TotalDays,
		"dailyRate":   &p.DailyRate,
		"totalAmount": &p.TotalAmount,
	}

	for key, dst := range texts {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(cast.ToString(v))
		*dst = &s
	}
	for key, dst := range numbers {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if n, ok := toAmount(v); ok {
			*dst = &n
		}
	}
	return p, nil
}

// amountNoise is what a model wraps around a number: grouping, currency
// and spacing.
var amountNoise = strings.NewReplacer(",", "", "원", "", "₩", "", " ", "", "\t", "")

// toAmount reads a non-negative whole number from a JSON value. Decimal
// strings are parsed like JSON numbers and the fraction is dropped.
func toAmount(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return wholeAmount(t)
	case string:
		s := amountNoise.Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, true
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return 0, false
		}
		return wholeAmount(f)
	}
	return 0, false
}

func wholeAmount(f float64) (int64, bool) {
	if !(f >= 0) || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
