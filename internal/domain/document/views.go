package document

import (
	"strconv"
	"time"

	"github.com/garyjia/caredoc/internal/domain/entity"
	"github.com/garyjia/caredoc/internal/domain/record"
)

// Fixed texts printed on the documents
const (
	AffiliationPurpose   = "보험회사제출용"
	BusinessTypeService  = "서비스업"
	AffiliationItem      = "개인간병및유사서비스업"
	ReceiptItem          = "간병인알선 중개업"
	ReceiptLineItem      = "간병비"
	ReceiptCopyNote      = "(공급받는자 보관용)"
	ReceiptEmptyHint     = "시작일/종료일/일당을 입력하면 일별 내역이 자동 생성됩니다."
	ReceiptTooLongHint   = "간병 기간이 366일을 넘어 일별 내역을 표시하지 않습니다."
	UsageConfirmation    = "상기와 같이 환자(피보험자)를 간병하였음을 확인합니다."
	UsageDisclaimer      = "*본 간병 노무 계약의 당사자는 구인자와 구직자 이며, 당사는 간병인 알선 업체로써 양 당사자를 중개합니다. 계약 당사자간 불성실 간병 또는 허위 간병의 경우 당사는 어떠한 법적 책임이나 의무도 부담하지 아니 합니다."
	InvoicePatientBlank  = "(환자 성명)"
	InvoiceRequest       = "입금 부탁드립니다."
	DefaultFeePerDay     = 7000
	DefaultBankAccount   = "카카오뱅크 3333-3093-7046"
	DefaultAccountHolder = "클라우드나인 메디케어"
)

// InvoiceSettings holds the flat service fee and payee printed on the invoice
type InvoiceSettings struct {
	FeePerDay     int64
	BankAccount   string
	AccountHolder string
}

// DefaultInvoiceSettings returns the stock invoice payee
func DefaultInvoiceSettings() InvoiceSettings {
	return InvoiceSettings{
		FeePerDay:     DefaultFeePerDay,
		BankAccount:   DefaultBankAccount,
		AccountHolder: DefaultAccountHolder,
	}
}

// AffiliationView is the data of the affiliation certificate
type AffiliationView struct {
	CaregiverName      string `json:"caregiverName"`
	MaskedIDNumber     string `json:"maskedIdNumber"`
	Purpose            string `json:"purpose"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	CompanyName        string `json:"companyName"`
	BusinessNumber     string `json:"businessNumber"`
	RepresentativeName string `json:"representativeName"`
	IssuedOn           string `json:"issuedOn"`
	CompanyPhone       string `json:"companyPhone"`
	BusinessType       string `json:"businessType"`
	BusinessItem       string `json:"businessItem"`
	CompanyAddress     string `json:"companyAddress"`
}

// NewAffiliationView maps a record onto the affiliation certificate. The
// issued-on date is today in UTC+9, never the record's issue date.
func NewAffiliationView(r entity.CaregiverRecord, now time.Time) AffiliationView {
	return AffiliationView{
		CaregiverName:      r.CaregiverName,
		MaskedIDNumber:     MaskIDNumber(r.ProtectorIDNumber),
		Purpose:            AffiliationPurpose,
		StartDate:          FormatDateKOR(r.StartDate),
		EndDate:            FormatDateKOR(r.EndDate),
		CompanyName:        r.CompanyName,
		BusinessNumber:     r.BusinessNumber,
		RepresentativeName: r.RepresentativeName,
		IssuedOn:           entity.TodayKST(now),
		CompanyPhone:       r.CompanyPhone,
		BusinessType:       BusinessTypeService,
		BusinessItem:       AffiliationItem,
		CompanyAddress:     r.CompanyAddress,
	}
}

// UsageView is the data of the usage certificate
type UsageView struct {
	PatientName        string `json:"patientName"`
	PatientBirthDate   string `json:"patientBirthDate"`
	HospitalName       string `json:"hospitalName"`
	CompanyName        string `json:"companyName"`
	CompanyPhone       string `json:"companyPhone"`
	CaregiverName      string `json:"caregiverName"`
	CaregiverBirthDate string `json:"caregiverBirthDate"`
	Amount             string `json:"amount"`
	Days               string `json:"days"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	IssueDate          string `json:"issueDate"`
	BusinessNumber     string `json:"businessNumber"`
	CompanyAddress     string `json:"companyAddress"`
	Confirmation       string `json:"confirmation"`
	Disclaimer         string `json:"disclaimer"`
}

// NewUsageView maps a record onto the usage certificate. A zero amount shows
// the unit only.
func NewUsageView(r entity.CaregiverRecord) UsageView {
	amount := " 원"
	if r.TotalAmount != 0 {
		amount = FormatMoney(r.TotalAmount) + " 원"
	}
	days := " "
	if r.TotalDays != 0 {
		days = strconv.FormatInt(r.TotalDays, 10) + "일"
	}

	return UsageView{
		PatientName:        r.PatientName,
		PatientBirthDate:   r.PatientBirthDate,
		HospitalName:       r.HospitalName,
		CompanyName:        r.CompanyName,
		CompanyPhone:       r.CompanyPhone,
		CaregiverName:      r.CaregiverName,
		CaregiverBirthDate: r.CaregiverBirthDate,
		Amount:             amount,
		Days:               days,
		StartDate:          slashDate(r.StartDate),
		EndDate:            slashDate(r.EndDate),
		IssueDate:          r.IssueDate,
		BusinessNumber:     r.BusinessNumber,
		CompanyAddress:     r.CompanyAddress,
		Confirmation:       UsageConfirmation,
		Disclaimer:         UsageDisclaimer,
	}
}

// ReceiptRow is one per-day line item
type ReceiptRow struct {
	Date      string `json:"date"`
	Item      string `json:"item"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unitPrice"`
	Amount    int64  `json:"amount"`
}

// ReceiptView is the data of the receipt
type ReceiptView struct {
	Number             string       `json:"number"`
	CopyNote           string       `json:"copyNote"`
	PatientName        string       `json:"patientName"`
	BusinessNumber     string       `json:"businessNumber"`
	CompanyName        string       `json:"companyName"`
	RepresentativeName string       `json:"representativeName"`
	CompanyAddress     string       `json:"companyAddress"`
	BusinessType       string       `json:"businessType"`
	BusinessItem       string       `json:"businessItem"`
	IssueDate          string       `json:"issueDate"`
	HeaderAmount       string       `json:"headerAmount"`
	Rows               []ReceiptRow `json:"rows"`
	EmptyHint          string       `json:"emptyHint,omitempty"`
	SummaryQty         string       `json:"summaryQty"`
	SummaryAmount      string       `json:"summaryAmount"`
}

// MaxReceiptRows bounds the per-day expansion of the receipt
const MaxReceiptRows = 366

// DailyRows expands the care period into one line item per day starting at
// startDate. Any missing input, or a period longer than MaxReceiptRows,
// yields no rows.
func DailyRows(startDate string, totalDays, dailyRate int64) []ReceiptRow {
	if startDate == "" || totalDays <= 0 || dailyRate == 0 || totalDays > MaxReceiptRows {
		return nil
	}
	start, ok := record.ParseDate(startDate)
	if !ok {
		return nil
	}

	rows := make([]ReceiptRow, 0, totalDays)
	for i := int64(0); i < totalDays; i++ {
		d := start.AddDate(0, 0, int(i))
		rows = append(rows, ReceiptRow{
			Date:      d.Format("01월 02일"),
			Item:      ReceiptLineItem,
			Qty:       1,
			UnitPrice: dailyRate,
			Amount:    dailyRate,
		})
	}
	return rows
}

// NewReceiptView maps a record onto the receipt. The summary amount is the
// record's total, not the sum of the rows.
func NewReceiptView(r entity.CaregiverRecord, now time.Time) ReceiptView {
	rows := DailyRows(r.StartDate, r.TotalDays, r.DailyRate)

	v := ReceiptView{
		Number:             receiptNumber(r.IssueDate, now),
		CopyNote:           ReceiptCopyNote,
		PatientName:        r.PatientName,
		BusinessNumber:     r.BusinessNumber,
		CompanyName:        r.CompanyName,
		RepresentativeName: r.RepresentativeName,
		CompanyAddress:     r.CompanyAddress,
		BusinessType:       BusinessTypeService,
		BusinessItem:       ReceiptItem,
		IssueDate:          r.IssueDate,
		HeaderAmount:       "₩" + FormatMoney(r.TotalAmount),
		Rows:               rows,
	}
	switch {
	case len(rows) > 0:
		v.SummaryQty = strconv.Itoa(len(rows))
	case r.TotalDays > MaxReceiptRows:
		v.EmptyHint = ReceiptTooLongHint
	default:
		v.EmptyHint = ReceiptEmptyHint
	}
	if r.TotalAmount != 0 {
		v.SummaryAmount = FormatMoney(r.TotalAmount)
	}
	return v
}

// InvoiceView is the data of the invoice
type InvoiceView struct {
	PatientName        string `json:"patientName"`
	BankAccount        string `json:"bankAccount"`
	AccountHolder      string `json:"accountHolder"`
	FeePerDay          int64  `json:"feePerDay"`
	TotalDays          int64  `json:"totalDays"`
	Total              int64  `json:"total"`
	Breakdown          string `json:"breakdown"`
	Request            string `json:"request"`
	IssueDate          string `json:"issueDate"`
	CompanyName        string `json:"companyName"`
	RepresentativeName string `json:"representativeName"`
}

// NewInvoiceView maps a record onto the invoice. Its total is the flat fee
// times the day count and ignores the record's rate and amount.
func NewInvoiceView(r entity.CaregiverRecord, s InvoiceSettings) InvoiceView {
	patient := r.PatientName
	if patient == "" {
		patient = InvoicePatientBlank
	}
	total := s.FeePerDay * r.TotalDays

	return InvoiceView{
		PatientName:        patient,
		BankAccount:        s.BankAccount,
		AccountHolder:      s.AccountHolder,
		FeePerDay:          s.FeePerDay,
		TotalDays:          r.TotalDays,
		Total:              total,
		Breakdown:          FormatMoney(s.FeePerDay) + "원 × " + strconv.FormatInt(r.TotalDays, 10) + "일 = " + FormatMoney(total) + "원",
		Request:            InvoiceRequest,
		IssueDate:          r.IssueDate,
		CompanyName:        r.CompanyName,
		RepresentativeName: r.RepresentativeName,
	}
}
