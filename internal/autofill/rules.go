package autofill

import (
	"strings"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/rules"
)

type FieldType string

const (
	FieldFullName          FieldType = "fullName"
	FieldFirstName         FieldType = "firstName"
	FieldLastName          FieldType = "lastName"
	FieldEmail             FieldType = "email"
	FieldPhone             FieldType = "phone"
	FieldLinkedIn          FieldType = "linkedin"
	FieldGitHub            FieldType = "github"
	FieldPortfolio         FieldType = "portfolio"
	FieldZipCode           FieldType = "zipCode"
	FieldCity              FieldType = "city"
	FieldState             FieldType = "state"
	FieldCountry           FieldType = "country"
	FieldAddress           FieldType = "address"
	FieldCurrentTitle      FieldType = "currentTitle"
	FieldYearsExperience   FieldType = "yearsExperience"
	FieldEducation         FieldType = "education"
	FieldSkills            FieldType = "skills"
	FieldSalary            FieldType = "salaryExpectation"
	FieldStartDate         FieldType = "startDate"
	FieldWorkAuthorization FieldType = "workAuthorization"
	FieldRelocate          FieldType = "willingToRelocate"
	FieldCoverLetter       FieldType = "coverLetter"
)

// FieldRules is evaluated first match wins against a field's search text.
// Order matters: full name precedes first name, email precedes address,
// links precede the generic website rule, and a field labelled only "name"
// is the last resort.
var FieldRules = rules.New(
	rules.P(FieldFullName, `(?i)full[\s_-]*name|legal[\s_-]*name|your[\s_-]*name`),
	rules.P(FieldFirstName, `(?i)first[\s_-]*name|given[\s_-]*name|(^|[^a-z])fname|forename`),
	rules.P(FieldLastName, `(?i)last[\s_-]*name|family[\s_-]*name|surname|(^|[^a-z])lname`),
	rules.P(FieldEmail, `(?i)e-?mail`),
	rules.P(FieldPhone, `(?i)phone|mobile|(^|[^a-z])tel([^a-z]|$)|contact[\s_-]*number`),
	rules.P(FieldLinkedIn, `(?i)linked[\s_-]*in`),
	rules.P(FieldGitHub, `(?i)git[\s_-]*hub`),
	rules.P(FieldPortfolio, `(?i)portfolio|website|personal[\s_-]*site`),
	rules.P(FieldZipCode, `(?i)(^|[^a-z])zip|postal|post[\s_-]*code`),
	rules.P(FieldCity, `(?i)(^|[^a-z])(city|town)([^a-z]|$)`),
	rules.P(FieldState, `(?i)(^|[^a-z])(state|province|county|region)([^a-z]|$)`),
	rules.P(FieldCountry, `(?i)country`),
	rules.P(FieldAddress, `(?i)address|street`),
	rules.P(FieldCurrentTitle, `(?i)(current|job|present)[\s_-]*(title|position|role)|(^|[^a-z])position`),
	rules.P(FieldYearsExperience, `(?i)experience`),
	rules.P(FieldEducation, `(?i)education|degree|university|qualification`),
	rules.P(FieldSkills, `(?i)(^|[^a-z])skills?([^a-z]|$)`),
	rules.P(FieldSalary, `(?i)salary|compensation|pay[\s_-]*expectation`),
	rules.P(FieldStartDate, `(?i)start[\s_-]*date|available[\s_-]*(from|date)|availability`),
	rules.P(FieldWorkAuthorization, `(?i)work[\s_-]*auth|authori[sz]ed|right[\s_-]*to[\s_-]*work|(^|[^a-z])visa([^a-z]|$)|sponsorship`),
	rules.P(FieldRelocate, `(?i)relocat`),
	rules.P(FieldCoverLetter, `(?i)cover[\s_-]*letter|motivation`),
	rules.P(FieldFullName, `(?i)^\s*(name\s*)+$`),
)

// Classify returns the field type for a search string.
func Classify(search string) (FieldType, bool) {
	return FieldRules.First(search)
}

// Value looks up the profile value for a field type. Empty means nothing
// to fill.
func Value(p domain.AutofillProfile, t FieldType) string {
	pi, pr, pf := p.PersonalInfo, p.Professional, p.Preferences
	switch t {
	case FieldFullName:
		if pi.FullName != "" {
			return pi.FullName
		}
		return strings.TrimSpace(pi.FirstName + " " + pi.LastName)
	case FieldFirstName:
		return pi.FirstName
	case FieldLastName:
		return pi.LastName
	case FieldEmail:
		return pi.Email
	case FieldPhone:
		return pi.Phone
	case FieldAddress:
		return pi.Address
	case FieldCity:
		return pi.City
	case FieldState:
		return pi.State
	case FieldZipCode:
		return pi.ZipCode
	case FieldCountry:
		return pi.Country
	case FieldCurrentTitle:
		return pr.CurrentTitle
	case FieldYearsExperience:
		return pr.YearsExperience
	case FieldEducation:
		return pr.Education
	case FieldSkills:
		return pr.Skills
	case FieldLinkedIn:
		return pr.LinkedIn
	case FieldGitHub:
		return pr.GitHub
	case FieldPortfolio:
		return pr.Portfolio
	case FieldSalary:
		return pf.SalaryExpectation
	case FieldStartDate:
		return pf.StartDate
	case FieldWorkAuthorization:
		return pf.WorkAuthorization
	case FieldRelocate:
		if pf.WillingToRelocate {
			return "yes"
		}
		return "no"
	case FieldCoverLetter:
		return pf.CoverLetter
	}
	return ""
}
