package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"myspace/internal/settings"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// location resolves the configured zone: IANA name first, then a fixed offset, then the host zone
func (b *Bot) location() *time.Location {
	b.mu.RLock()
	iana := b.tzIANA
	offset := b.tzOffset
	b.mu.RUnlock()

	if iana != "" {
		loc, err := time.LoadLocation(iana)
		if err == nil {
			return loc
		}
		b.logger.Warn("Unknown timezone, falling back", zap.String("timezone", iana), zap.Error(err))
	}
	if offset != nil {
		return time.FixedZone(offsetName(*offset), *offset*60)
	}
	return time.Local
}

// localDateTime returns the current date and HH:MM in the configured zone
func (b *Bot) localDateTime() (string, string) {
	now := b.now().In(b.location())
	return now.Format(dateLayout), now.Format(clockLayout)
}

func (b *Bot) timezoneText() string {
	b.mu.RLock()
	iana := b.tzIANA
	offset := b.tzOffset
	b.mu.RUnlock()

	current := "системный"
	switch {
	case iana != "":
		current = iana
	case offset != nil:
		current = b.location().String()
	}
	return fmt.Sprintf("Отправь геолокацию, чтобы я сам определил часовой пояс. 📍\n\nСейчас: %s", current)
}

// handleLocation stores the zone found at the shared coordinates
func (b *Bot) handleLocation(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	lat := message.Location.Latitude
	lon := message.Location.Longitude

	zone := ""
	if b.zones != nil {
		zone = b.zones.GetTimezoneName(lon, lat)
	}
	if zone == "" {
		b.logger.Warn("Timezone lookup found nothing", zap.Float64("lat", lat), zap.Float64("lon", lon))
		b.reply(chatID, "Не удалось определить часовой пояс. Попробуй снова позже.", mainMenuKeyboard())
		return
	}

	b.mu.RLock()
	token := b.token
	allowed := b.allowedID
	b.mu.RUnlock()

	if stored, ok := b.store.Read(); ok {
		token = stored.Token
		if allowed == nil {
			allowed = stored.AllowedUserID
		}
	}
	if token == "" {
		b.reply(chatID, "Токен бота не найден. Сначала подключи бота в настройках.", mainMenuKeyboard())
		return
	}

	next := &settings.Settings{
		Token:         token,
		AllowedUserID: allowed,
		TimezoneCity:  fmt.Sprintf("lat %.4f, lon %.4f", lat, lon),
		TimezoneIANA:  zone,
	}
	if err := b.store.Write(next); err != nil {
		b.logger.Error("Failed to save timezone", zap.Error(err), zap.Int64("chat_id", chatID))
		b.reply(chatID, "Ошибка. Попробуй позже.", mainMenuKeyboard())
		return
	}
	b.ApplySettings(next)

	b.logger.Info("Timezone updated from location", zap.Int64("chat_id", chatID), zap.String("timezone", zone))
	b.reply(chatID, fmt.Sprintf("Часовой пояс обновлен: %s. Теперь время будет корректным ✅", zone), mainMenuKeyboard())
}

// offsetName formats minutes east of UTC as UTC+03:00
func offsetName(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, minutes/60, minutes%60)
}
