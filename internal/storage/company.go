package storage

// Company is one customer of the workshop.
type Company struct {
	ID                 string `json:"id"`
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	Notes              string `json:"notes"`
	ContactPerson      string `json:"contactPerson"`
	ContactNumber      string `json:"contactNumber"`
}
