package domain

// Keys in the persistent key-value store.
const (
	KeySettings     = "settings"
	KeyJobBoardData = "jobBoardData"
	KeyClientID     = "clientId"
)

type EligibilityCriteria struct {
	AcceptedRoutes []string `json:"acceptedRoutes"`
	MinSalary      int      `json:"minSalary,omitempty"`
}

// Settings is the settings blob the UI writes. Missing fields read as the
// defaults from DefaultSettings.
type Settings struct {
	UKFiltersEnabled       bool                `json:"ukFiltersEnabled"`
	UKEligibilityCriteria  EligibilityCriteria `json:"ukEligibilityCriteria"`
	AutofillProfile        *AutofillProfile    `json:"autofillProfile,omitempty"`
	ConvexURL              string              `json:"convexUrl"`
	DefaultKeywords        string              `json:"defaultKeywords"`
	DefaultConnectionLevel string              `json:"defaultConnectionLevel"`
}

func DefaultSettings() Settings {
	return Settings{
		UKFiltersEnabled: true,
		UKEligibilityCriteria: EligibilityCriteria{
			AcceptedRoutes: []string{},
		},
		DefaultKeywords:        "recruiter OR talent acquisition",
		DefaultConnectionLevel: "2nd",
	}
}
