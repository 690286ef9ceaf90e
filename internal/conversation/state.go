package conversation

import (
	"myspace/internal/models"
)

// Flow names a conversation variant
type Flow string

const (
	FlowAddDiary    Flow = "add_diary"
	FlowEditDiary   Flow = "edit_diary"
	FlowAddFood     Flow = "add_food"
	FlowEditProduct Flow = "edit_product"
)

// Step names a position inside a flow
type Step string

const (
	StepChoose      Step = "choose"
	StepText        Step = "text"
	StepMood        Step = "mood"
	StepPhotos      Step = "photos"
	StepName        Step = "name"
	StepAssessment  Step = "assessment"
	StepPros        Step = "pros"
	StepCons        Step = "cons"
	StepDescription Step = "description"
)

var flowSteps = map[Flow][]Step{
	FlowAddDiary:    {StepText, StepMood, StepPhotos},
	FlowEditDiary:   {StepChoose, StepText, StepMood},
	FlowAddFood:     {StepName, StepAssessment, StepPros, StepCons, StepDescription, StepPhotos},
	FlowEditProduct: {StepChoose, StepName, StepAssessment, StepPros, StepCons, StepDescription, StepPhotos},
}

// Steps returns the ordered steps of flow
func Steps(flow Flow) []Step {
	return flowSteps[flow]
}

// next returns the step following current, or current when it is the last one
func next(flow Flow, current Step) Step {
	steps := flowSteps[flow]
	for i, s := range steps {
		if s == current && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return current
}

// State is the in-progress form of a chat. The set of implementations is closed.
type State interface {
	Flow() Flow
	CurrentStep() Step
	// Advance moves to the next step of the flow
	Advance()
	sealed()
}

// AddDiaryEntry collects a new diary entry
type AddDiaryEntry struct {
	Step      Step
	Text      string
	Mood      *int
	PhotoURLs []string
}

// NewAddDiaryEntry starts the flow at its first step
func NewAddDiaryEntry() *AddDiaryEntry {
	return &AddDiaryEntry{Step: StepText}
}

func (s *AddDiaryEntry) Flow() Flow        { return FlowAddDiary }
func (s *AddDiaryEntry) CurrentStep() Step { return s.Step }
func (s *AddDiaryEntry) Advance()          { s.Step = next(FlowAddDiary, s.Step) }
func (s *AddDiaryEntry) sealed()           {}

// AddPhoto records a photo reference and reports whether the cap is reached
func (s *AddDiaryEntry) AddPhoto(ref string) bool {
	s.PhotoURLs = appendPhoto(s.PhotoURLs, ref)
	return len(s.PhotoURLs) >= models.MaxPhotos
}

// Payload builds the create-entry request for the given local date and time
func (s *AddDiaryEntry) Payload(date, clock string) models.NewDiaryEntry {
	p := models.NewDiaryEntry{
		Date: date,
		Time: clock,
		Text: s.Text,
		Mood: s.Mood,
	}
	if len(s.PhotoURLs) > 0 {
		p.PhotoURLs = append([]string(nil), s.PhotoURLs...)
		p.PhotoURL = s.PhotoURLs[0]
	}
	return p
}

// EditDiaryEntry collects changes to an existing diary entry
type EditDiaryEntry struct {
	Step         Step
	ID           int64
	OriginalText string
	OriginalMood *int
	Text         *string
	Mood         *int
}

// NewEditDiaryEntry starts the flow at the selection step
func NewEditDiaryEntry() *EditDiaryEntry {
	return &EditDiaryEntry{Step: StepChoose}
}

func (s *EditDiaryEntry) Flow() Flow        { return FlowEditDiary }
func (s *EditDiaryEntry) CurrentStep() Step { return s.Step }
func (s *EditDiaryEntry) Advance()          { s.Step = next(FlowEditDiary, s.Step) }
func (s *EditDiaryEntry) sealed()           {}

// Select seeds the originals from entry and moves to the first editable step
func (s *EditDiaryEntry) Select(entry models.DiaryEntry) {
	s.ID = entry.ID
	s.OriginalText = entry.Text
	s.OriginalMood = entry.Mood
	s.Step = StepText
}

// Patch builds the update request. Skipped fields fall back to the originals.
func (s *EditDiaryEntry) Patch() models.DiaryEntryPatch {
	text := s.OriginalText
	if s.Text != nil {
		text = *s.Text
	}
	p := models.DiaryEntryPatch{Mood: s.OriginalMood}
	if text != "" {
		p.Text = &text
	}
	if s.Mood != nil {
		p.Mood = s.Mood
	}
	return p
}

// AddFoodProduct collects a new nutrition product
type AddFoodProduct struct {
	Step        Step
	Name        string
	Assessment  models.Assessment
	Pros        *string
	Cons        *string
	Description *string
	PhotoURLs   []string
}

// NewAddFoodProduct starts the flow at its first step
func NewAddFoodProduct() *AddFoodProduct {
	return &AddFoodProduct{Step: StepName}
}

func (s *AddFoodProduct) Flow() Flow        { return FlowAddFood }
func (s *AddFoodProduct) CurrentStep() Step { return s.Step }
func (s *AddFoodProduct) Advance()          { s.Step = next(FlowAddFood, s.Step) }
func (s *AddFoodProduct) sealed()           {}

// AddPhoto records a photo reference and reports whether the cap is reached
func (s *AddFoodProduct) AddPhoto(ref string) bool {
	s.PhotoURLs = appendPhoto(s.PhotoURLs, ref)
	return len(s.PhotoURLs) >= models.MaxPhotos
}

// Payload builds the create-product request
func (s *AddFoodProduct) Payload() models.NewProduct {
	p := models.NewProduct{
		Name:       s.Name,
		Assessment: s.Assessment,
	}
	if s.Pros != nil {
		p.Pros = *s.Pros
	}
	if s.Cons != nil {
		p.Cons = *s.Cons
	}
	if s.Description != nil {
		p.Notes = *s.Description
	}
	if len(s.PhotoURLs) > 0 {
		p.PhotoURLs = append([]string(nil), s.PhotoURLs...)
		p.PhotoURL = s.PhotoURLs[0]
	}
	return p
}

// EditFoodProduct collects changes to an existing product
type EditFoodProduct struct {
	Step        Step
	ID          int64
	Original    models.Product
	Name        *string
	Assessment  *models.Assessment
	Pros        *string
	Cons        *string
	Description *string
	PhotoURLs   []string
}

// NewEditFoodProduct starts the flow at the selection step
func NewEditFoodProduct() *EditFoodProduct {
	return &EditFoodProduct{Step: StepChoose}
}

func (s *EditFoodProduct) Flow() Flow        { return FlowEditProduct }
func (s *EditFoodProduct) CurrentStep() Step { return s.Step }
func (s *EditFoodProduct) Advance()          { s.Step = next(FlowEditProduct, s.Step) }
func (s *EditFoodProduct) sealed()           {}

// Select seeds the original product and moves to the first editable step
func (s *EditFoodProduct) Select(product models.Product) {
	s.ID = product.ID
	s.Original = product
	s.Step = StepName
}

// AddPhoto records a photo reference and reports whether the cap is reached
func (s *EditFoodProduct) AddPhoto(ref string) bool {
	s.PhotoURLs = appendPhoto(s.PhotoURLs, ref)
	return len(s.PhotoURLs) >= models.MaxPhotos
}

// Patch builds the update request with only the overridden fields.
// New photos replace the stored set.
func (s *EditFoodProduct) Patch() models.ProductPatch {
	p := models.ProductPatch{
		Name:       s.Name,
		Assessment: s.Assessment,
		Pros:       s.Pros,
		Cons:       s.Cons,
		Notes:      s.Description,
	}
	if len(s.PhotoURLs) > 0 {
		first := s.PhotoURLs[0]
		p.PhotoURL = &first
		p.PhotoURLs = append([]string(nil), s.PhotoURLs...)
	}
	return p
}

func appendPhoto(urls []string, ref string) []string {
	if len(urls) >= models.MaxPhotos {
		return urls
	}
	return append(urls, ref)
}
