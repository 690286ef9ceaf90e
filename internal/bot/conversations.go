package bot

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"myspace/internal/conversation"
	"myspace/internal/models"
)

const (
	promptDiaryText      = "Напиши текст записи ✍️"
	promptMood           = "Как настроение? 😊"
	promptMoodButtons    = "Выбери настроение кнопкой ниже 👇"
	promptDiaryPhotos    = "Добавить фото к записи? 📸 (до 3)"
	promptEditMood       = "Обновить настроение? 😊"
	promptProductName    = "Название продукта? 🥗"
	promptAssessment     = "Оценка продукта?"
	promptAssessmentBad  = "Не понял оценку 🤔 Нажми кнопку ниже или напиши: положительный / средний / отрицательный"
	promptPros           = "Плюсы продукта? Можно пропустить ⏭️"
	promptCons           = "Минусы продукта? Можно пропустить ⏭️"
	promptDescription    = "Описание продукта? Можно пропустить ⏭️"
	promptProductPhotos  = "Добавить фото к продукту? 📸 (до 3)"
	promptEditPhotos     = "Обновить фото продукта? 📸"
	promptPhotoAdded     = "Фото добавлено. Можно еще (до 3) или нажми \"Готово\"."
	promptPhotoExpected  = "Пришли фото или нажми \"Готово\" / \"Пропустить\"."
	promptChooseFromList = "Выбери вариант кнопкой выше 👆"
)

// handleConversation applies in to the chat's active state
func (b *Bot) handleConversation(ctx context.Context, chatID int64, state conversation.State, in input) error {
	switch st := state.(type) {
	case *conversation.AddDiaryEntry:
		return b.handleAddDiary(ctx, chatID, st, in)
	case *conversation.EditDiaryEntry:
		return b.handleEditDiary(ctx, chatID, st, in)
	case *conversation.AddFoodProduct:
		return b.handleAddFood(ctx, chatID, st, in)
	case *conversation.EditFoodProduct:
		return b.handleEditProduct(ctx, chatID, st, in)
	default:
		return fmt.Errorf("unknown conversation state %T", state)
	}
}

func (b *Bot) handleAddDiary(ctx context.Context, chatID int64, st *conversation.AddDiaryEntry, in input) error {
	switch st.Step {
	case conversation.StepText:
		if in.text == "" || in.skip {
			b.reply(chatID, promptDiaryText, nil)
			return nil
		}
		st.Text = in.text
		st.Advance()
		b.reply(chatID, promptMood, moodKeyboard("Без настроения ⏭️"))

	case conversation.StepMood:
		if in.skip {
			st.Mood = nil
		} else {
			mood, ok := parseMood(in.text)
			if !ok {
				b.reply(chatID, promptMoodButtons, moodKeyboard("Без настроения ⏭️"))
				return nil
			}
			st.Mood = &mood
		}
		st.Advance()
		b.reply(chatID, promptDiaryPhotos, photosKeyboard(cbDiaryPhoto))

	case conversation.StepPhotos:
		return b.handlePhotoStep(ctx, chatID, st, in, cbDiaryPhoto)
	}
	return nil
}

func (b *Bot) handleEditDiary(ctx context.Context, chatID int64, st *conversation.EditDiaryEntry, in input) error {
	switch st.Step {
	case conversation.StepChoose:
		if !in.button {
			b.reply(chatID, promptChooseFromList, nil)
			return nil
		}
		return b.selectDiaryEntry(ctx, chatID, st, in.text)

	case conversation.StepText:
		if !in.skip {
			if in.text == "" {
				b.reply(chatID, "Новый текст записи? (можно /skip)", skipKeyboard(cbDiarySkip))
				return nil
			}
			text := in.text
			st.Text = &text
		}
		st.Advance()
		b.reply(chatID, promptEditMood, moodKeyboard("Оставить как есть ⏭️"))

	case conversation.StepMood:
		if !in.skip {
			mood, ok := parseMood(in.text)
			if !ok {
				b.reply(chatID, promptMoodButtons, moodKeyboard("Оставить как есть ⏭️"))
				return nil
			}
			st.Mood = &mood
		}
		return b.finalize(ctx, chatID, st)
	}
	return nil
}

func (b *Bot) handleAddFood(ctx context.Context, chatID int64, st *conversation.AddFoodProduct, in input) error {
	switch st.Step {
	case conversation.StepName:
		if in.text == "" || in.skip {
			b.reply(chatID, promptProductName, nil)
			return nil
		}
		st.Name = in.text
		st.Advance()
		b.reply(chatID, promptAssessment, assessmentKeyboard(cbFoodAssessment, false))

	case conversation.StepAssessment:
		assessment, ok := models.ParseAssessment(in.text)
		if !ok {
			b.reply(chatID, promptAssessmentBad, assessmentKeyboard(cbFoodAssessment, false))
			return nil
		}
		st.Assessment = assessment
		st.Advance()
		b.reply(chatID, promptPros, skipKeyboard(cbFoodSkip))

	case conversation.StepPros:
		st.Pros = optionalText(in)
		st.Advance()
		b.reply(chatID, promptCons, skipKeyboard(cbFoodSkip))

	case conversation.StepCons:
		st.Cons = optionalText(in)
		st.Advance()
		b.reply(chatID, promptDescription, skipKeyboard(cbFoodSkip))

	case conversation.StepDescription:
		st.Description = optionalText(in)
		st.Advance()
		b.reply(chatID, promptProductPhotos, photosKeyboard(cbFoodPhoto))

	case conversation.StepPhotos:
		return b.handlePhotoStep(ctx, chatID, st, in, cbFoodPhoto)
	}
	return nil
}

func (b *Bot) handleEditProduct(ctx context.Context, chatID int64, st *conversation.EditFoodProduct, in input) error {
	switch st.Step {
	case conversation.StepChoose:
		if !in.button {
			b.reply(chatID, promptChooseFromList, nil)
			return nil
		}
		return b.selectProduct(ctx, chatID, st, in.text)

	case conversation.StepName:
		st.Name = optionalText(in)
		st.Advance()
		b.reply(chatID, promptAssessment, assessmentKeyboard(cbProductAssessment, true))

	case conversation.StepAssessment:
		if !in.skip {
			assessment, ok := models.ParseAssessment(in.text)
			if !ok {
				b.reply(chatID, promptAssessmentBad, assessmentKeyboard(cbProductAssessment, true))
				return nil
			}
			st.Assessment = &assessment
		}
		st.Advance()
		b.reply(chatID, promptPros, skipKeyboard(cbProductSkip))

	case conversation.StepPros:
		st.Pros = optionalText(in)
		st.Advance()
		b.reply(chatID, promptCons, skipKeyboard(cbProductSkip))

	case conversation.StepCons:
		st.Cons = optionalText(in)
		st.Advance()
		b.reply(chatID, promptDescription, skipKeyboard(cbProductSkip))

	case conversation.StepDescription:
		st.Description = optionalText(in)
		st.Advance()
		b.reply(chatID, promptEditPhotos, photosKeyboard(cbProductPhoto))

	case conversation.StepPhotos:
		return b.handlePhotoStep(ctx, chatID, st, in, cbProductPhoto)
	}
	return nil
}

// photoCollector is a state with a photos step
type photoCollector interface {
	conversation.State
	AddPhoto(ref string) bool
}

// handlePhotoStep collects photos until done, skip, or the cap is reached
func (b *Bot) handlePhotoStep(ctx context.Context, chatID int64, st photoCollector, in input, prefix string) error {
	switch {
	case in.skip:
		clearPhotos(st)
		return b.finalize(ctx, chatID, st)
	case in.done:
		return b.finalize(ctx, chatID, st)
	case len(in.photos) > 0:
		// Telegram lists sizes from smallest to largest
		fileID := in.photos[len(in.photos)-1].FileID
		ref := fileID
		if hosted, ok := b.relayPhoto(ctx, fileID); ok {
			ref = hosted
		}
		if st.AddPhoto(ref) {
			return b.finalize(ctx, chatID, st)
		}
		b.reply(chatID, promptPhotoAdded, photosKeyboard(prefix))
	default:
		b.reply(chatID, promptPhotoExpected, photosKeyboard(prefix))
	}
	return nil
}

func clearPhotos(st photoCollector) {
	switch s := st.(type) {
	case *conversation.AddDiaryEntry:
		s.PhotoURLs = nil
	case *conversation.AddFoodProduct:
		s.PhotoURLs = nil
	case *conversation.EditFoodProduct:
		s.PhotoURLs = nil
	}
}

// optionalText returns nil for a skip answer
func optionalText(in input) *string {
	if in.skip || in.text == "" {
		return nil
	}
	text := in.text
	return &text
}

func parseMood(text string) (int, bool) {
	mood, err := strconv.Atoi(text)
	if err != nil || mood < 1 || mood > 5 {
		return 0, false
	}
	return mood, true
}

// startFlow replaces the chat's conversation with st
func (b *Bot) startFlow(chatID int64, st conversation.State) {
	if prev, ok := b.states.Get(chatID); ok {
		b.logger.Debug("Discarding unfinished conversation",
			zap.Int64("chat_id", chatID),
			zap.String("flow", string(prev.Flow())),
		)
	}
	b.states.Set(chatID, st)
	b.metrics.RecordFlowStarted(string(st.Flow()))
}
