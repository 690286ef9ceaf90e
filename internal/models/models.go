package models

import (
	"strings"
	"time"
)

// MaxPhotos is the number of photos a diary entry or product may carry
const MaxPhotos = 3

// Assessment is a qualitative rating attached to a nutrition product
type Assessment string

const (
	AssessmentPositive Assessment = "positive"
	AssessmentNeutral  Assessment = "neutral"
	AssessmentNegative Assessment = "negative"
)

var assessmentAliases = map[string]Assessment{
	"positive":      AssessmentPositive,
	"neutral":       AssessmentNeutral,
	"negative":      AssessmentNegative,
	"положительный": AssessmentPositive,
	"плюс":          AssessmentPositive,
	"средний":       AssessmentNeutral,
	"нейтральный":   AssessmentNeutral,
	"отрицательный": AssessmentNegative,
	"минус":         AssessmentNegative,
}

// ParseAssessment accepts the canonical values and their Russian aliases, case-insensitively
func ParseAssessment(s string) (Assessment, bool) {
	a, ok := assessmentAliases[strings.ToLower(strings.TrimSpace(s))]
	return a, ok
}

// Valid reports whether a is one of the three known values
func (a Assessment) Valid() bool {
	switch a {
	case AssessmentPositive, AssessmentNeutral, AssessmentNegative:
		return true
	}
	return false
}

// DiaryEntry represents a diary record as returned by the backend
type DiaryEntry struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Text      string    `json:"text"`
	Mood      *int      `json:"mood,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	PhotoURLs []string  `json:"photo_urls,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Photos returns the entry's photos, falling back to the legacy single photo field
func (e DiaryEntry) Photos() []string {
	return photoList(e.PhotoURLs, e.PhotoURL)
}

// NewDiaryEntry is the create-entry payload
type NewDiaryEntry struct {
	Date      string   `json:"date" validate:"required"`
	Time      string   `json:"time" validate:"required"`
	Text      string   `json:"text" validate:"required"`
	Mood      *int     `json:"mood,omitempty" validate:"omitempty,min=1,max=5"`
	PhotoURL  string   `json:"photo_url,omitempty"`
	PhotoURLs []string `json:"photo_urls,omitempty" validate:"max=3"`
}

// DiaryEntryPatch is the update-entry payload; nil fields are left untouched
type DiaryEntryPatch struct {
	Text      *string  `json:"text,omitempty"`
	Mood      *int     `json:"mood,omitempty" validate:"omitempty,min=1,max=5"`
	PhotoURL  *string  `json:"photo_url,omitempty"`
	PhotoURLs []string `json:"photo_urls,omitempty" validate:"max=3"`
}

// Empty reports whether the patch changes nothing
func (p DiaryEntryPatch) Empty() bool {
	return p.Text == nil && p.Mood == nil && p.PhotoURL == nil && p.PhotoURLs == nil
}

// Product represents a nutrition product
type Product struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Assessment Assessment `json:"assessment"`
	Pros       string     `json:"pros,omitempty"`
	Cons       string     `json:"cons,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	PhotoURL   string     `json:"photo_url,omitempty"`
	PhotoURLs  []string   `json:"photo_urls,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Photos returns the product's photos, falling back to the legacy single photo field
func (p Product) Photos() []string {
	return photoList(p.PhotoURLs, p.PhotoURL)
}

// NewProduct is the create-product payload
type NewProduct struct {
	Name       string     `json:"name" validate:"required"`
	Assessment Assessment `json:"assessment" validate:"required,oneof=positive neutral negative"`
	Pros       string     `json:"pros,omitempty"`
	Cons       string     `json:"cons,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	PhotoURL   string     `json:"photo_url,omitempty"`
	PhotoURLs  []string   `json:"photo_urls,omitempty" validate:"max=3"`
}

// ProductPatch is the update-product payload; nil fields are left untouched
type ProductPatch struct {
	Name       *string     `json:"name,omitempty"`
	Assessment *Assessment `json:"assessment,omitempty" validate:"omitempty,oneof=positive neutral negative"`
	Pros       *string     `json:"pros,omitempty"`
	Cons       *string     `json:"cons,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
	PhotoURL   *string     `json:"photo_url,omitempty"`
	PhotoURLs  []string    `json:"photo_urls,omitempty" validate:"max=3"`
}

// Empty reports whether the patch changes nothing
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Assessment == nil && p.Pros == nil && p.Cons == nil &&
		p.Notes == nil && p.PhotoURL == nil && p.PhotoURLs == nil
}

func photoList(urls []string, single string) []string {
	if len(urls) > 0 {
		return urls
	}
	if single != "" {
		return []string{single}
	}
	return nil
}
