package domain

import "time"

const (
	UnknownTitle    = "Unknown Title"
	UnknownCompany  = "Unknown Company"
	UnknownLocation = "Unknown Location"
)

// JobRecord is one card extracted during a scan pass. Title, Company and
// Location are never empty; they fall back to the Unknown* sentinels.
type JobRecord struct {
	Title               string    `json:"title"`
	Company             string    `json:"company"`
	Location            string    `json:"location"`
	URL                 string    `json:"url"`
	IsSponsored         bool      `json:"isSponsored"`
	IsRecruitmentAgency bool      `json:"isRecruitmentAgency"`
	SponsorshipType     string    `json:"sponsorshipType,omitempty"`
	DateFound           time.Time `json:"dateFound"`
}

// Source says why a sponsorship result looks the way it does.
type Source string

const (
	SourceLive              Source = "live"
	SourceRateLimited       Source = "rate_limited"
	SourceServerRateLimited Source = "server_rate_limited"
	SourceConvexRateLimited Source = "convex_rate_limited"
	SourceError             Source = "error"
)

// Throttled reports whether the result was produced without a real lookup
// because some rate limit was hit.
func (s Source) Throttled() bool {
	return s == SourceRateLimited || s == SourceServerRateLimited || s == SourceConvexRateLimited
}

type SponsorshipResult struct {
	Company         string  `json:"company"`
	IsSponsored     bool    `json:"isSponsored"`
	SponsorshipType *string `json:"sponsorshipType"`
	Source          Source  `json:"source,omitempty"`
	MatchedName     string  `json:"matchedName,omitempty"`
}

func (r SponsorshipResult) Type() string {
	if r.SponsorshipType == nil {
		return ""
	}
	return *r.SponsorshipType
}

type BoardStatus string

const (
	StatusInterested   BoardStatus = "interested"
	StatusApplied      BoardStatus = "applied"
	StatusInterviewing BoardStatus = "interviewing"
	StatusRejected     BoardStatus = "rejected"
	StatusOffer        BoardStatus = "offer"
)

type SponsorshipInfo struct {
	IsSponsored     bool   `json:"isSponsored"`
	SponsorshipType string `json:"sponsorshipType,omitempty"`
}

type JobBoardEntry struct {
	ID                  string           `json:"id"`
	Company             string           `json:"company"`
	Title               string           `json:"title"`
	Location            string           `json:"location"`
	URL                 string           `json:"url"`
	DateAdded           time.Time        `json:"dateAdded"`
	Status              BoardStatus      `json:"status"`
	Notes               string           `json:"notes"`
	SponsorshipInfo     *SponsorshipInfo `json:"sponsorshipInfo,omitempty"`
	IsRecruitmentAgency bool             `json:"isRecruitmentAgency,omitempty"`
}
