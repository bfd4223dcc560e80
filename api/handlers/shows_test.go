package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/radio-santana-api/api/handlers"
	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/databases/mocks"
	"github.com/linesmerrill/radio-santana-api/models"
)

var grid = []models.Show{
	{Name: "Despertar Santana", StartTime: "6:00", EndTime: "10:00", Days: []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes"}},
	{Name: "Tarde Tropical", StartTime: "14:00", EndTime: "16:30", Days: []string{"Sábado"}},
	{Name: "Noche Bohemia", StartTime: "22:00", EndTime: "02:00", Days: []string{"Viernes"}},
}

func TestCurrentShow(t *testing.T) {
	// 2024-01-01 was a Monday
	at := func(day, hour, minute int) time.Time {
		return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
	}
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"start is inclusive", at(1, 6, 0), "Despertar Santana"},
		{"inside the window", at(3, 9, 59), "Despertar Santana"},
		{"end is exclusive", at(1, 10, 0), ""},
		{"wrong day", at(7, 7, 0), ""},
		{"weekend show", at(6, 15, 0), "Tarde Tropical"},
		{"overnight before midnight", at(5, 23, 30), "Noche Bohemia"},
		{"overnight after midnight", at(6, 1, 59), "Noche Bohemia"},
		{"overnight ended", at(6, 2, 0), ""},
		{"overnight needs the previous day", at(5, 1, 0), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handlers.CurrentShow(grid, tt.now)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestCurrentShow_SkipsBrokenTimes(t *testing.T) {
	shows := []models.Show{
		{Name: "Roto", StartTime: "25:00", EndTime: "26:00", Days: []string{"Lunes"}},
		{Name: "Sin formato", StartTime: "6", EndTime: "10:00", Days: []string{"lunes"}},
		{Name: "Bien", StartTime: "06:00", EndTime: "10:00", Days: []string{"lunes"}},
	}
	got := handlers.CurrentShow(shows, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC))
	require.NotNil(t, got)
	assert.Equal(t, "Bien", got.Name)
}

func TestShow_ShowsHandler(t *testing.T) {
	db := &mocks.ShowDatabase{}
	db.On("Find", mock.Anything, bson.M{}, mock.Anything).Return(grid, nil).Once()
	db.On("Find", mock.Anything, bson.M{}, mock.Anything).Return(nil, databases.Wrap("find shows", mongo.ErrClientDisconnected)).Once()
	s := handlers.Show{DB: db}

	rr := httptest.NewRecorder()
	s.ShowsHandler(rr, httptest.NewRequest("GET", "/api/v1/shows", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got []models.Show
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 3)

	rr = httptest.NewRecorder()
	s.ShowsHandler(rr, httptest.NewRequest("GET", "/api/v1/shows", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	db.AssertExpectations(t)
}

func TestShow_CurrentShowHandler(t *testing.T) {
	db := &mocks.ShowDatabase{}
	db.On("Find", mock.Anything, bson.M{}).Return(grid, nil)
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	s := handlers.Show{
		DB:       db,
		Location: loc,
		// Friday 23:15 in Mexico City
		Now: func() time.Time { return time.Date(2024, 1, 6, 5, 15, 0, 0, time.UTC) },
	}

	rr := httptest.NewRecorder()
	s.CurrentShowHandler(rr, httptest.NewRequest("GET", "/api/v1/shows/current", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got handlers.CurrentShowResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Viernes", got.Day)
	assert.Equal(t, "23:15", got.Time)
	require.NotNil(t, got.Show)
	assert.Equal(t, "Noche Bohemia", got.Show.Name)
}

func TestShow_CreateShowHandler(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	id := primitive.NewObjectID()
	res := &mocks.InsertOneResultHelper{}
	res.On("Decode").Return(id)
	db := &mocks.ShowDatabase{}
	db.On("InsertOne", mock.Anything, mock.MatchedBy(func(s models.Show) bool {
		return s.Name == "Tarde Tropical" && s.Days[0] == "Sábado" && s.Days[1] == "Domingo" && s.CreatedAt.Equal(now)
	})).Return(res, nil)
	s := handlers.Show{DB: db, Now: func() time.Time { return now }}

	body := `{"name":" Tarde Tropical ","host":"Lupita","startTime":"14:00","endTime":"16:30","days":["sábado","DOMINGO"]}`
	rr := httptest.NewRecorder()
	s.CreateShowHandler(rr, httptest.NewRequest("POST", "/api/v1/admin/shows", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"_id":"`+id.Hex()+`"}`, rr.Body.String())
	db.AssertExpectations(t)
}

func TestShow_CreateShowHandlerValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing name", `{"startTime":"14:00","endTime":"16:00","days":["Lunes"]}`, "El nombre del programa es obligatorio."},
		{"bad start", `{"name":"x","startTime":"2pm","endTime":"16:00","days":["Lunes"]}`, "La hora de inicio debe tener el formato HH:MM."},
		{"bad end", `{"name":"x","startTime":"14:00","endTime":"16:75","days":["Lunes"]}`, "La hora de fin debe tener el formato HH:MM."},
		{"no days", `{"name":"x","startTime":"14:00","endTime":"16:00","days":[]}`, "Selecciona al menos un día."},
		{"unknown day", `{"name":"x","startTime":"14:00","endTime":"16:00","days":["Monday"]}`, "Día no válido: Monday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mocks.ShowDatabase{}
			s := handlers.Show{DB: db}

			rr := httptest.NewRecorder()
			s.CreateShowHandler(rr, httptest.NewRequest("POST", "/api/v1/admin/shows", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.message, decodeError(t, rr).Message)
			db.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
		})
	}
}

func TestShow_UpdateShowHandler(t *testing.T) {
	id := primitive.NewObjectID()
	updated := &models.Show{ID: id, Name: "Tarde Tropical", IsLive: true}
	db := &mocks.ShowDatabase{}
	db.On("UpdateOne", mock.Anything, bson.M{"_id": id}, mock.Anything).Return(updated, nil)
	s := handlers.Show{DB: db}

	body := `{"name":"Tarde Tropical","startTime":"14:00","endTime":"16:30","days":["Sábado"],"isLive":true}`
	req := mux.SetURLVars(httptest.NewRequest("PUT", "/api/v1/admin/shows/"+id.Hex(), strings.NewReader(body)), map[string]string{"show_id": id.Hex()})
	rr := httptest.NewRecorder()
	s.UpdateShowHandler(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got models.Show
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.IsLive)

	req = mux.SetURLVars(httptest.NewRequest("PUT", "/api/v1/admin/shows/1234", strings.NewReader(body)), map[string]string{"show_id": "1234"})
	rr = httptest.NewRecorder()
	s.UpdateShowHandler(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, models.MessageError{Message: "failed to get objectID from Hex", Error: "the provided hex string is not a valid ObjectID"}, decodeError(t, rr))
}

func TestShow_DeleteShowHandler(t *testing.T) {
	found, missing, broken := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	db := &mocks.ShowDatabase{}
	db.On("DeleteOne", mock.Anything, bson.M{"_id": found}).Return(int64(1), nil)
	db.On("DeleteOne", mock.Anything, bson.M{"_id": missing}).Return(int64(0), nil)
	db.On("DeleteOne", mock.Anything, bson.M{"_id": broken}).Return(int64(0), errors.New("boom"))
	s := handlers.Show{DB: db}

	tests := []struct {
		id     primitive.ObjectID
		status int
	}{
		{found, http.StatusOK},
		{missing, http.StatusNotFound},
		{broken, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		req := mux.SetURLVars(httptest.NewRequest("DELETE", "/api/v1/admin/shows/"+tt.id.Hex(), nil), map[string]string{"show_id": tt.id.Hex()})
		rr := httptest.NewRecorder()
		s.DeleteShowHandler(rr, req)
		assert.Equal(t, tt.status, rr.Code)
	}
}
