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

const (
	defaultNewsLimit = 20
	maxNewsLimit     = 100
)

// News exposes the station news feed
type News struct {
	DB  databases.NewsDatabase
	Now func() time.Time
}

func (n News) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// NewsHandler returns the latest news, newest first
func (n News) NewsHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > maxNewsLimit {
		limit = defaultNewsLimit
	}

	filter := bson.M{}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}}).SetLimit(int64(limit))
	items, err := n.DB.Find(ctx, filter, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	api.WriteJSON(w, http.StatusOK, items)
}

// NewsItemHandler returns a single news item
func (n News) NewsItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["news_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	item, err := n.DB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, item)
}

// CreateNewsHandler publishes a news item
func (n News) CreateNewsHandler(w http.ResponseWriter, r *http.Request) {
	var item models.NewsItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validateNews(&item); err != nil {
		writeError(w, err)
		return
	}
	if item.Author == "" {
		if user, ok := api.UserFromContext(r.Context()); ok {
			item.Author = user.UserName()
		}
	}

	now := n.now()
	item.ID = primitive.NilObjectID
	item.PublishedAt = &now
	item.UpdatedAt = &now

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := n.DB.InsertOne(ctx, item)
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]interface{}{"_id": res.Decode()})
}

// UpdateNewsHandler replaces the editable fields of a news item
func (n News) UpdateNewsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["news_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var item models.NewsItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validateNews(&item); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":     item.Title,
		"content":   item.Content,
		"author":    item.Author,
		"category":  item.Category,
		"imageUrl":  item.ImageURL,
		"updatedAt": n.now(),
	}}
	updated, err := n.DB.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

// DeleteNewsHandler removes a news item
func (n News) DeleteNewsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["news_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := n.DB.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("Noticia no encontrada.", http.StatusNotFound, w, nil)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func validateNews(item *models.NewsItem) error {
	item.Title = strings.TrimSpace(item.Title)
	item.Content = strings.TrimSpace(item.Content)
	item.Author = strings.TrimSpace(item.Author)
	item.Category = strings.TrimSpace(item.Category)
	if item.Title == "" {
		return &models.ValidationError{Field: "title", Message: "El título es obligatorio."}
	}
	if item.Content == "" {
		return &models.ValidationError{Field: "content", Message: "El contenido es obligatorio."}
	}
	return nil
}
