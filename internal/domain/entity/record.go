package entity

// CaregiverRecord is one caregiving episode together with the issuer profile
// printed on its documents.
type CaregiverRecord struct {
	// Issuer profile
	CompanyName        string `json:"companyName"`
	CompanyAddress     string `json:"companyAddress"`
	CompanyPhone       string `json:"companyPhone"`
	BusinessNumber     string `json:"businessNumber"`
	RepresentativeName string `json:"representativeName"`

	// Caregiver
	CaregiverName      string `json:"caregiverName"`
	CaregiverBirthDate string `json:"caregiverBirthDate"`

	// Patient / guardian
	PatientName       string `json:"patientName"`
	PatientBirthDate  string `json:"patientBirthDate"`
	ProtectorIDNumber string `json:"protectorIdNumber"`

	// Service
	HospitalName string `json:"hospitalName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	TotalDays    int64  `json:"totalDays"`
	DailyRate    int64  `json:"dailyRate"`
	TotalAmount  int64  `json:"totalAmount"`

	IssueDate string `json:"issueDate"`
}

// CompanyProfile returns the issuer subset of the record
func (r *CaregiverRecord) CompanyProfile() CompanyProfile {
	return CompanyProfile{
		CompanyName:        r.CompanyName,
		CompanyAddress:     r.CompanyAddress,
		CompanyPhone:       r.CompanyPhone,
		BusinessNumber:     r.BusinessNumber,
		RepresentativeName: r.RepresentativeName,
	}
}

// ApplyCompanyProfile overwrites the issuer fields with p
func (r *CaregiverRecord) ApplyCompanyProfile(p CompanyProfile) {
	r.CompanyName = p.CompanyName
	r.CompanyAddress = p.CompanyAddress
	r.CompanyPhone = p.CompanyPhone
	r.BusinessNumber = p.BusinessNumber
	r.RepresentativeName = p.RepresentativeName
}

// CompanyProfile is the issuer identity persisted across sessions
type CompanyProfile struct {
	CompanyName        string `json:"companyName" mapstructure:"company_name"`
	CompanyAddress     string `json:"companyAddress" mapstructure:"company_address"`
	CompanyPhone       string `json:"companyPhone" mapstructure:"company_phone"`
	BusinessNumber     string `json:"businessNumber" mapstructure:"business_number"`
	RepresentativeName string `json:"representativeName" mapstructure:"representative_name"`
}

// PartialRecord is what an extraction returns: any subset of the record keys.
// A nil field was not extracted; a non-nil empty string was extracted as empty.
type PartialRecord struct {
	CompanyName        *string `json:"companyName,omitempty"`
	CompanyAddress     *string `json:"companyAddress,omitempty"`
	CompanyPhone       *string `json:"companyPhone,omitempty"`
	BusinessNumber     *string `json:"businessNumber,omitempty"`
	RepresentativeName *string `json:"representativeName,omitempty"`

	CaregiverName      *string `json:"caregiverName,omitempty"`
	CaregiverBirthDate *string `json:"caregiverBirthDate,omitempty"`

	PatientName       *string `json:"patientName,omitempty"`
	PatientBirthDate  *string `json:"patientBirthDate,omitempty"`
	ProtectorIDNumber *string `json:"protectorIdNumber,omitempty"`

	HospitalName *string `json:"hospitalName,omitempty"`
	StartDate    *string `json:"startDate,omitempty"`
	EndDate      *string `json:"endDate,omitempty"`
	TotalDays    *int64  `json:"totalDays,omitempty"`
	DailyRate    *int64  `json:"dailyRate,omitempty"`
	TotalAmount  *int64  `json:"totalAmount,omitempty"`

	IssueDate *string `json:"issueDate,omitempty"`
}
