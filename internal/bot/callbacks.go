package bot

import (
	"strings"

	"myspace/internal/conversation"
)

// Callback data prefixes; the value follows after a colon
const (
	cbDiaryMood         = "diary:mood"
	cbDiaryPhoto        = "diary:photo"
	cbDiaryEdit         = "diary:edit"
	cbDiarySkip         = "diary:skip"
	cbFoodAssessment    = "food:assessment"
	cbFoodSkip          = "food:skip"
	cbFoodPhoto         = "food:photo"
	cbProductEdit       = "product:edit"
	cbProductSkip       = "product:skip"
	cbProductAssessment = "product:assessment"
	cbProductPhoto      = "product:photo"
)

type stepKey struct {
	flow conversation.Flow
	step conversation.Step
}

// callbackRoutes lists the only button prefix honored at each flow step
var callbackRoutes = map[stepKey]string{
	{conversation.FlowAddDiary, conversation.StepMood}:   cbDiaryMood,
	{conversation.FlowAddDiary, conversation.StepPhotos}: cbDiaryPhoto,

	{conversation.FlowEditDiary, conversation.StepChoose}: cbDiaryEdit,
	{conversation.FlowEditDiary, conversation.StepText}:   cbDiarySkip,
	{conversation.FlowEditDiary, conversation.StepMood}:   cbDiaryMood,

	{conversation.FlowAddFood, conversation.StepAssessment}:  cbFoodAssessment,
	{conversation.FlowAddFood, conversation.StepPros}:        cbFoodSkip,
	{conversation.FlowAddFood, conversation.StepCons}:        cbFoodSkip,
	{conversation.FlowAddFood, conversation.StepDescription}: cbFoodSkip,
	{conversation.FlowAddFood, conversation.StepPhotos}:      cbFoodPhoto,

	{conversation.FlowEditProduct, conversation.StepChoose}:      cbProductEdit,
	{conversation.FlowEditProduct, conversation.StepName}:        cbProductSkip,
	{conversation.FlowEditProduct, conversation.StepAssessment}:  cbProductAssessment,
	{conversation.FlowEditProduct, conversation.StepPros}:        cbProductSkip,
	{conversation.FlowEditProduct, conversation.StepCons}:        cbProductSkip,
	{conversation.FlowEditProduct, conversation.StepDescription}: cbProductSkip,
	{conversation.FlowEditProduct, conversation.StepPhotos}:      cbProductPhoto,
}

func callbackData(prefix, value string) string {
	return prefix + ":" + value
}

// callbackInput converts button data into an answer for the chat's current step.
// It reports false when the button does not belong to that step.
func callbackInput(state conversation.State, data string) (input, bool) {
	prefix, ok := callbackRoutes[stepKey{state.Flow(), state.CurrentStep()}]
	if !ok {
		return input{}, false
	}

	var value string
	switch {
	case data == prefix:
	case strings.HasPrefix(data, prefix+":"):
		value = strings.TrimPrefix(data, prefix+":")
	default:
		return input{}, false
	}

	switch value {
	case "", "skip":
		return input{skip: true, button: true}, true
	case "done":
		return input{done: true, button: true}, true
	}
	return input{text: value, button: true}, true
}
