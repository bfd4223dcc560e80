package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/models"
)

// spanishDays is indexed by time.Weekday
var spanishDays = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// Show exposes the programming grid
type Show struct {
	DB       databases.ShowDatabase
	Location *time.Location
	Now      func() time.Time
}

// CurrentShowResponse is returned by the current show endpoint
type CurrentShowResponse struct {
	Day  string       `json:"day"`
	Time string       `json:"time"`
	Show *models.Show `json:"show"`
}

func (s Show) now() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return now
}

// ShowsHandler returns every show ordered by start time
func (s Show) ShowsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	shows, err := s.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
	if err != nil {
		writeError(w, err)
		return
	}
	if shows == nil {
		shows = []models.Show{}
	}
	api.WriteJSON(w, http.StatusOK, shows)
}

// CurrentShowHandler returns the show on air right now, if any
func (s Show) CurrentShowHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	shows, err := s.DB.Find(ctx, bson.M{})
	if err != nil {
		writeError(w, err)
		return
	}
	now := s.now()
	api.WriteJSON(w, http.StatusOK, CurrentShowResponse{
		Day:  spanishDays[now.Weekday()],
		Time: now.Format("15:04"),
		Show: CurrentShow(shows, now),
	})
}

// CreateShowHandler adds a show to the grid
func (s Show) CreateShowHandler(w http.ResponseWriter, r *http.Request) {
	var show models.Show
	if err := json.NewDecoder(r.Body).Decode(&show); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validateShow(&show); err != nil {
		writeError(w, err)
		return
	}

	now := s.now()
	show.ID = primitive.NilObjectID
	show.CreatedAt = &now
	show.UpdatedAt = &now

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := s.DB.InsertOne(ctx, show)
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]interface{}{"_id": res.Decode()})
}

// UpdateShowHandler replaces the editable fields of a show
func (s Show) UpdateShowHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["show_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var show models.Show
	if err := json.NewDecoder(r.Body).Decode(&show); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validateShow(&show); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        show.Name,
		"host":        show.Host,
		"description": show.Description,
		"startTime":   show.StartTime,
		"endTime":     show.EndTime,
		"days":        show.Days,
		"isLive":      show.IsLive,
		"imageUrl":    show.ImageURL,
		"updatedAt":   s.now(),
	}}
	updated, err := s.DB.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

// DeleteShowHandler removes a show from the grid
func (s Show) DeleteShowHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["show_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := s.DB.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, err)
		return
	}
	if n == 0 {
		config.ErrorStatus("Programa no encontrado.", http.StatusNotFound, w, nil)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// CurrentShow returns the show on air at now. A window whose end is not after
// its start runs past midnight, into the day after one of its days.
func CurrentShow(shows []models.Show, now time.Time) *models.Show {
	today := spanishDays[now.Weekday()]
	yesterday := spanishDays[(now.Weekday()+6)%7]
	minute := now.Hour()*60 + now.Minute()

	for i := range shows {
		show := &shows[i]
		start, ok := parseClock(show.StartTime)
		if !ok {
			continue
		}
		end, ok := parseClock(show.EndTime)
		if !ok {
			continue
		}

		if start < end {
			if hasDay(show.Days, today) && minute >= start && minute < end {
				return show
			}
			continue
		}
		if hasDay(show.Days, today) && minute >= start {
			return show
		}
		if hasDay(show.Days, yesterday) && minute < end {
			return show
		}
	}
	return nil
}

// parseClock reads H:MM or HH:MM into minutes after midnight
func parseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func hasDay(days []string, day string) bool {
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

func validateShow(show *models.Show) error {
	show.Name = strings.TrimSpace(show.Name)
	show.Host = strings.TrimSpace(show.Host)
	if show.Name == "" {
		return &models.ValidationError{Field: "name", Message: "El nombre del programa es obligatorio."}
	}
	if _, ok := parseClock(show.StartTime); !ok {
		return &models.ValidationError{Field: "startTime", Message: "La hora de inicio debe tener el formato HH:MM."}
	}
	if _, ok := parseClock(show.EndTime); !ok {
		return &models.ValidationError{Field: "endTime", Message: "La hora de fin debe tener el formato HH:MM."}
	}
	if len(show.Days) == 0 {
		return &models.ValidationError{Field: "days", Message: "Selecciona al menos un día."}
	}
	for i, d := range show.Days {
		canonical, ok := canonicalDay(d)
		if !ok {
			return &models.ValidationError{Field: "days", Message: "Día no válido: " + d}
		}
		show.Days[i] = canonical
	}
	return nil
}

func canonicalDay(day string) (string, bool) {
	for _, d := range spanishDays {
		if strings.EqualFold(strings.TrimSpace(day), d) {
			return d, true
		}
	}
	return "", false
}
