package domain

// AutofillProfile is owned by the settings store; the engine only reads it.
type AutofillProfile struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Professional Professional `json:"professional"`
	Preferences  Preferences  `json:"preferences"`
}

type PersonalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName,omitempty"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

type Professional struct {
	CurrentTitle    string `json:"currentTitle"`
	YearsExperience string `json:"yearsExperience"`
	Education       string `json:"education"`
	Skills          string `json:"skills"`
	LinkedIn        string `json:"linkedin" validate:"omitempty,url"`
	GitHub          string `json:"github" validate:"omitempty,url"`
	Portfolio       string `json:"portfolio" validate:"omitempty,url"`
}

type Preferences struct {
	SalaryExpectation string `json:"salaryExpectation"`
	StartDate         string `json:"startDate"`
	WorkAuthorization string `json:"workAuthorization"`
	WillingToRelocate bool   `json:"willingToRelocate"`
	CoverLetter       string `json:"coverLetter"`
}

// IsZero reports a profile with nothing usable in it.
func (p AutofillProfile) IsZero() bool {
	return p == AutofillProfile{}
}
