package entity

// IssueHistoryEntry records one successfully exported document
type IssueHistoryEntry struct {
	ID            string       `json:"id"`
	IssueDateTime string       `json:"issueDateTime"`
	DocumentType  DocumentType `json:"documentType"`
	PatientName   string       `json:"patientName"`
	CaregiverName string       `json:"caregiverName"`
	TotalAmount   int64        `json:"totalAmount"`
}
