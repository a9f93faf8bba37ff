package company

// Company is an organizer company as the backend reports it.
type Company struct {
	CompanyID   int64    `json:"companyId"`
	CompanyName string   `json:"companyName"`
	Description string   `json:"description,omitempty"`
	LogoURL     string   `json:"logoURL,omitempty"`
	Contact     *Contact `json:"customAccount,omitempty"`
}

// Contact is the registered contact person for a company.
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
