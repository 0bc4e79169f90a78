package domain

type FieldSelectors struct {
	Title    string `yaml:"title"`
	Company  string `yaml:"company"`
	Location string `yaml:"location"`
	Link     string `yaml:"link"`
}

// SiteProfile is chosen once per page load and never modified afterwards.
type SiteProfile struct {
	SiteID          string         `yaml:"site_id"`
	CardSelectors   []string       `yaml:"card_selectors"`
	FieldSelectors  FieldSelectors `yaml:"field_selectors"`
	CompanySelector string         `yaml:"company_selector"`
}
