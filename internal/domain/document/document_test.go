package document

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/caredoc/internal/domain/apperr"
	"github.com/garyjia/caredoc/internal/domain/entity"
	"github.com/garyjia/caredoc/internal/domain/record"
)

// 2026-03-09 16:30 UTC is 2026-03-10 01:30 in UTC+9
var fixedNow = time.Date(2026, 3, 9, 16, 30, 0, 0, time.UTC)

func sampleRecord() entity.CaregiverRecord {
	return entity.CaregiverRecord{
		CompanyName:        "OOO 간병 서비스",
		CompanyAddress:     "서울특별시 강남구 테헤란로 123",
		CompanyPhone:       "02-1234-5678",
		BusinessNumber:     "123-45-67890",
		RepresentativeName: "홍길동",
		CaregiverName:      "김간병",
		CaregiverBirthDate: "1965-05-05",
		PatientName:        "김철수",
		PatientBirthDate:   "1940-01-01",
		ProtectorIDNumber:  "650505-2345678",
		HospitalName:       "서울병원",
		StartDate:          "2026-03-01",
		EndDate:            "2026-03-03",
		TotalDays:          3,
		DailyRate:          50000,
		TotalAmount:        150000,
		IssueDate:          "2026-03-04",
	}
}

func TestFormatDateKOR(t *testing.T) {
	assert.Equal(t, "2026년 3월 1일", FormatDateKOR("2026-03-01"))
	assert.Equal(t, "2026년 12월 25일", FormatDateKOR("2026-12-25"))
	assert.Equal(t, "    년   월   일", FormatDateKOR(""))
	assert.Equal(t, "2026/03/01", FormatDateKOR("2026/03/01"))
}

func TestMaskIDNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6505052345678", "650505-2******"},
		{"650505-2345678", "650505-2******"},
		{"1234567", "123456-7******"},
		{"123", "123 - *******"},
		{"", "****** - *******"},
		{"abc", "****** - *******"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskIDNumber(tt.in), tt.in)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0", FormatMoney(0))
	assert.Equal(t, "999", FormatMoney(999))
	assert.Equal(t, "1,000", FormatMoney(1000))
	assert.Equal(t, "400,000", FormatMoney(400000))
	assert.Equal(t, "1,234,567", FormatMoney(1234567))
	assert.Equal(t, "-12,000", FormatMoney(-12000))
}

func TestDailyRows(t *testing.T) {
	rows := DailyRows("2026-03-01", 3, 50000)
	require.Len(t, rows, 3)
	assert.Equal(t, "03월 01일", rows[0].Date)
	assert.Equal(t, "03월 02일", rows[1].Date)
	assert.Equal(t, "03월 03일", rows[2].Date)
	for _, row := range rows {
		assert.Equal(t, ReceiptLineItem, row.Item)
		assert.Equal(t, 1, row.Qty)
		assert.Equal(t, int64(50000), row.UnitPrice)
		assert.Equal(t, int64(50000), row.Amount)
	}

	assert.Equal(t, "03월 01일", DailyRows("2026-02-28", 2, 1)[1].Date)
	assert.Empty(t, DailyRows("", 3, 50000))
	assert.Empty(t, DailyRows("2026-03-01", 0, 50000))
	assert.Empty(t, DailyRows("2026-03-01", 3, 0))
	assert.Empty(t, DailyRows("soon", 3, 50000))
	assert.Empty(t, DailyRows("2026-03-01", -2, 50000))
}

func TestDailyRows_Bounded(t *testing.T) {
	assert.Len(t, DailyRows("2026-01-01", MaxReceiptRows, 50000), MaxReceiptRows)
	assert.Empty(t, DailyRows("2026-01-01", MaxReceiptRows+1, 50000))
	assert.Empty(t, DailyRows("2026-01-01", 1<<40, 50000))
}

func TestNewReceiptView(t *testing.T) {
	r := sampleRecord()
	r.TotalAmount = 1 // manual override diverges from the rows on purpose

	v := NewReceiptView(r, fixedNow)
	assert.Equal(t, "20260304-001", v.Number)
	assert.Len(t, v.Rows, 3)
	assert.Equal(t, "3", v.SummaryQty)
	assert.Equal(t, "1", v.SummaryAmount)
	assert.Equal(t, "₩1", v.HeaderAmount)
	assert.Empty(t, v.EmptyHint)
}

func TestNewReceiptView_Empty(t *testing.T) {
	v := NewReceiptView(entity.CaregiverRecord{}, fixedNow)
	assert.Equal(t, "20260310-001", v.Number)
	assert.Empty(t, v.Rows)
	assert.Equal(t, ReceiptEmptyHint, v.EmptyHint)
	assert.Equal(t, "₩0", v.HeaderAmount)
	assert.Equal(t, "", v.SummaryQty)
	assert.Equal(t, "", v.SummaryAmount)
}

func TestNewReceiptView_PeriodTooLong(t *testing.T) {
	r := sampleRecord()
	r.TotalDays = 1 << 40

	v := NewReceiptView(r, fixedNow)
	assert.Empty(t, v.Rows)
	assert.Equal(t, ReceiptTooLongHint, v.EmptyHint)
	assert.Equal(t, "", v.SummaryQty)
}

func TestNewUsageView(t *testing.T) {
	v := NewUsageView(sampleRecord())
	assert.Equal(t, "150,000 원", v.Amount)
	assert.Equal(t, "3일", v.Days)
	assert.Equal(t, "2026/03/01", v.StartDate)
	assert.Equal(t, "2026/03/03", v.EndDate)

	empty := NewUsageView(entity.CaregiverRecord{})
	assert.Equal(t, " 원", empty.Amount)
	assert.Equal(t, " ", empty.Days)
}

func TestNewAffiliationView_UsesTodayNotIssueDate(t *testing.T) {
	v := NewAffiliationView(sampleRecord(), fixedNow)
	assert.Equal(t, "2026-03-10", v.IssuedOn)
	assert.Equal(t, "650505-2******", v.MaskedIDNumber)
	assert.Equal(t, "2026년 3월 1일", v.StartDate)
	assert.Equal(t, AffiliationPurpose, v.Purpose)
}

func TestNewInvoiceView_IndependentOfRecordAmounts(t *testing.T) {
	r := sampleRecord()
	r.TotalDays = 5
	r.DailyRate = 80000
	r.TotalAmount = 400000

	v := NewInvoiceView(r, DefaultInvoiceSettings())
	assert.Equal(t, int64(35000), v.Total)
	assert.Equal(t, "7,000원 × 5일 = 35,000원", v.Breakdown)
	assert.Equal(t, DefaultBankAccount, v.BankAccount)

	r.PatientName = ""
	assert.Equal(t, InvoicePatientBlank, NewInvoiceView(r, DefaultInvoiceSettings()).PatientName)
}

func TestTemplates_Build(t *testing.T) {
	tmpl, err := NewTemplates(Options{
		Now:    func() time.Time { return fixedNow },
		Assets: Assets{Stamp: "data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)

	for _, docType := range entity.ExportOrder {
		t.Run(string(docType), func(t *testing.T) {
			page, err := tmpl.Build(docType, sampleRecord())
			require.NoError(t, err)
			assert.Equal(t, entity.PageWidth, page.Width)
			assert.Equal(t, entity.PageHeight, page.Height)
			html := string(page.HTML)
			assert.Contains(t, html, docType.Title())
			assert.Contains(t, html, "size: 794px 1123px")
			assert.Contains(t, html, `src="data:image/png;base64,AAAA"`)
		})
	}
}

func TestTemplates_BuildReceiptRows(t *testing.T) {
	tmpl, err := NewTemplates(Options{Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)

	page, err := tmpl.Build(entity.DocumentReceipt, sampleRecord())
	require.NoError(t, err)
	html := string(page.HTML)
	assert.Contains(t, html, "03월 02일")
	assert.Contains(t, html, "50,000")
	assert.NotContains(t, html, ReceiptEmptyHint)
	assert.NotContains(t, html, `alt="직인"`)

	empty, err := tmpl.Build(entity.DocumentReceipt, entity.CaregiverRecord{})
	require.NoError(t, err)
	assert.Contains(t, string(empty.HTML), ReceiptEmptyHint)
}

func TestTemplates_EscapesRecordText(t *testing.T) {
	tmpl, err := NewTemplates(Options{})
	require.NoError(t, err)

	r := sampleRecord()
	r.PatientName = "<script>x</script>"
	page, err := tmpl.Build(entity.DocumentInvoice, r)
	require.NoError(t, err)
	assert.NotContains(t, string(page.HTML), "<script>")
}

func TestTemplates_UnknownType(t *testing.T) {
	tmpl, err := NewTemplates(Options{})
	require.NoError(t, err)

	_, err = tmpl.Build(entity.DocumentType("MEMO"), sampleRecord())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrRender))
	assert.False(t, tmpl.Has("MEMO"))
}

func TestEndToEnd_MergeThenReceipt(t *testing.T) {
	s := func(v string) *string { return &v }
	rate := int64(80000)

	current := record.New(entity.CompanyProfile{CompanyName: "OOO 간병 서비스"}, fixedNow)
	merged := record.Merge(current, &entity.PartialRecord{
		CaregiverName: s("홍길동"),
		PatientName:   s("김철수"),
		StartDate:     s("2026-10-01"),
		EndDate:       s("2026-10-05"),
		DailyRate:     &rate,
	})
	require.Equal(t, int64(5), merged.TotalDays)
	require.Equal(t, int64(400000), merged.TotalAmount)

	v := NewReceiptView(merged, fixedNow)
	require.Len(t, v.Rows, 5)
	var sum int64
	for _, row := range v.Rows {
		sum += row.Amount
	}
	assert.Equal(t, int64(400000), sum)
	assert.Equal(t, "400,000", v.SummaryAmount)
	assert.Equal(t, "10월 05일", v.Rows[4].Date)
}
