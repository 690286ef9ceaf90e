package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// Handler serves the settings read/update API
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates the settings API handler
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes mounts the settings endpoints on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/telegram/settings", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Put("/", h.handlePut)
	})
}

// view is the API representation; absent optional values are rendered as null
type view struct {
	Token                 string  `json:"token"`
	AllowedUserID         *int64  `json:"allowedUserId"`
	TimezoneOffsetMinutes *int    `json:"timezoneOffsetMinutes"`
	TimezoneCity          string  `json:"timezoneCity"`
	TimezoneIANA          *string `json:"timezoneIana"`
}

func newView(st *Settings) view {
	if st == nil {
		return view{}
	}
	v := view{
		Token:                 st.Token,
		AllowedUserID:         st.AllowedUserID,
		TimezoneOffsetMinutes: st.TimezoneOffsetMinutes,
		TimezoneCity:          st.TimezoneCity,
	}
	if st.TimezoneIANA != "" {
		zone := st.TimezoneIANA
		v.TimezoneIANA = &zone
	}
	return v
}

// UpdateRequest is the PUT body; numeric fields may be sent as strings
type UpdateRequest struct {
	Token                 string          `json:"token"`
	AllowedUserID         json.RawMessage `json:"allowedUserId"`
	TimezoneOffsetMinutes json.RawMessage `json:"timezoneOffsetMinutes"`
	TimezoneCity          string          `json:"timezoneCity"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	st, _ := h.store.Read()
	render.JSON(w, r, newView(st))
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, r, "Invalid request body")
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		h.badRequest(w, r, "Token is required")
		return
	}

	allowed, err := parseFlexibleInt(req.AllowedUserID)
	if err != nil {
		h.badRequest(w, r, "allowedUserId must be a number")
		return
	}

	offset, err := parseFlexibleInt(req.TimezoneOffsetMinutes)
	if err != nil {
		h.badRequest(w, r, "timezoneOffsetMinutes must be a number")
		return
	}

	st := &Settings{Token: token, AllowedUserID: allowed}
	if offset != nil {
		minutes := int(*offset)
		st.TimezoneOffsetMinutes = &minutes
	}

	if city := strings.TrimSpace(req.TimezoneCity); city != "" {
		zone, ok := ResolveCity(city)
		if !ok {
			h.badRequest(w, r, "Unknown city for timezone")
			return
		}
		st.TimezoneCity = city
		st.TimezoneIANA = zone
	}

	if err := h.store.Write(st); err != nil {
		h.logger.Error("Failed to write settings", zap.Error(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "Failed to save settings"})
		return
	}

	h.logger.Info("Settings updated via API",
		zap.Bool("allowed_user_set", st.AllowedUserID != nil),
		zap.String("timezone", st.TimezoneIANA),
	)
	render.JSON(w, r, newView(st))
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: msg})
}

// parseFlexibleInt accepts a JSON number, a numeric string, null, or an empty string
func parseFlexibleInt(raw json.RawMessage) (*int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
	} else {
		text = string(raw)
	}

	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
