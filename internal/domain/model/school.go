// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strings"
	"time"
)

// School is a catalog entry. Coordinates are optional.
type School struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LocationText *string   `json:"location_text"`
	Website      *string   `json:"website"`
	EnvEng       *string   `json:"env_eng"` // strong, available or none
	Lat          *float64  `json:"lat"`
	Lng          *float64  `json:"lng"`
	IsSeeded     bool      `json:"is_seeded"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasCoordinates reports whether the school can be pinned on a map.
func (s School) HasCoordinates() bool {
	return s.Lat != nil && s.Lng != nil && !math.IsNaN(*s.Lat) && !math.IsNaN(*s.Lng)
}

// SchoolRef is the denormalised school carried by tasks and applications.
type SchoolRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// My-school statuses in list order.
const (
	MySchoolConsidering = "Considering"
	MySchoolBuilding    = "Building"
	MySchoolReady       = "Ready"
	MySchoolSubmitted   = "Submitted"
	MySchoolWaiting     = "Waiting"
	MySchoolDecision    = "Decision"
)

// Ranking buckets.
const (
	BucketReach  = "Reach"
	BucketMatch  = "Match"
	BucketSafety = "Safety"
)

// MaxRating is the upper bound of every fit rating.
const MaxRating = 5

// UnrankedRank sorts rows without a rank last.
const UnrankedRank = 9999

// MySchool links a catalog school to an owner's list.
type MySchool struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	SchoolID      string    `json:"school_id"`
	Status        string    `json:"status"`
	RankingBucket *string   `json:"ranking_bucket"`
	Rank          int       `json:"rank"`
	Notes         *string   `json:"notes"`
	Prestige      *int      `json:"prestige"`
	EnvFit        *int      `json:"env_fit"`
	LocationFit   *int      `json:"location_fit"`
	VibeFit       *int      `json:"vibe_fit"`
	CreatedAt     time.Time `json:"created_at"`
	School        *School   `json:"schools,omitempty"`
}

// Ref returns the denormalised school reference, or nil without a join.
func (m MySchool) Ref() *SchoolRef {
	if m.School == nil {
		return nil
	}
	return &SchoolRef{ID: m.School.ID, Name: m.School.Name}
}

// ClampRating bounds a fit rating to 0..MaxRating.
func ClampRating(v *int) *int {
	if v == nil {
		return nil
	}
	n := min(max(*v, 0), MaxRating)
	return &n
}

// NormalizeBucket maps free text onto a ranking bucket. Empty or unknown
// text yields nil (unbucketed).
func NormalizeBucket(s string) *string {
	var b string
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reach":
		b = BucketReach
	case "match":
		b = BucketMatch
	case "safety":
		b = BucketSafety
	default:
		return nil
	}
	return &b
}

// BucketCounts tallies a list by ranking bucket.
type BucketCounts struct {
	Reach      int `json:"reach"`
	Match      int `json:"match"`
	Safety     int `json:"safety"`
	Unbucketed int `json:"unbucketed"`
}

// CountBuckets tallies rows by ranking bucket, case-insensitively.
func CountBuckets(rows []MySchool) BucketCounts {
	var c BucketCounts
	for _, r := range rows {
		b := ""
		if r.RankingBucket != nil {
			b = strings.ToLower(*r.RankingBucket)
		}
		switch b {
		case "reach":
			c.Reach++
		case "match":
			c.Match++
		case "safety":
			c.Safety++
		default:
			c.Unbucketed++
		}
	}
	return c
}
