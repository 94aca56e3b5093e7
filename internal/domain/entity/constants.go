package entity

import "time"

// DocumentType identifies one of the four issued documents
type DocumentType string

// Document types
const (
	DocumentAffiliation DocumentType = "AFFILIATION" // 소속확인서
	DocumentUsage       DocumentType = "USAGE"       // 사용확인서
	DocumentReceipt     DocumentType = "RECEIPT"     // 영수증
	DocumentInvoice     DocumentType = "INVOICE"     // 청구서
)

// ExportOrder is the order documents are produced in by an export-all run
var ExportOrder = []DocumentType{
	DocumentReceipt,
	DocumentUsage,
	DocumentAffiliation,
	DocumentInvoice,
}

// documentLabels are the short names used in file names and the history ledger
var documentLabels = map[DocumentType]string{
	DocumentAffiliation: "소속확인서",
	DocumentUsage:       "사용확인서",
	DocumentReceipt:     "영수증",
	DocumentInvoice:     "청구서",
}

// documentTitles are the titles printed on the page
var documentTitles = map[DocumentType]string{
	DocumentAffiliation: "소 속 확 인 서",
	DocumentUsage:       "입원 간병인 사용 확인서",
	DocumentReceipt:     "영 수 증",
	DocumentInvoice:     "청 구 서",
}

// Valid reports whether t is one of the four known document types
func (t DocumentType) Valid() bool {
	_, ok := documentLabels[t]
	return ok
}

// Label returns the short Korean name of the document
func (t DocumentType) Label() string {
	if label, ok := documentLabels[t]; ok {
		return label
	}
	return "알 수 없음"
}

// Title returns the printed title of the document
func (t DocumentType) Title() string {
	return documentTitles[t]
}

// ParseDocumentType parses a document type name case-sensitively
func ParseDocumentType(s string) (DocumentType, bool) {
	t := DocumentType(s)
	return t, t.Valid()
}

// Page geometry: A4 at 96 DPI
const (
	PageWidth  = 794
	PageHeight = 1123
)

// Storage keys for the persisted JSON blobs
const (
	KeyCompanyProfile = "caregiverCompanyInfo"
	KeyIssueHistory   = "caregiverIssueHistory"
)

// Date layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// KST is the fixed UTC+9 zone used for every "today" computation
var KST = time.FixedZone("KST", 9*60*60)

// TodayKST returns now's calendar date in UTC+9 as YYYY-MM-DD
func TodayKST(now time.Time) string {
	return now.In(KST).Format(DateLayout)
}
