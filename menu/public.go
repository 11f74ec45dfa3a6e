package menu

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"vanita/db"
	"vanita/models"
	"vanita/rdx"
	"vanita/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetPublicMenu handles GET /api/menu: available items only, with optional
// case-insensitive name search and category filter.
func GetPublicMenu(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	// The unfiltered storefront list is the hot path; serve it from cache.
	if search == "" && category == "" {
		if cached, err := rdx.RdxGet(publicCacheKey); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cached))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := PublicFilter(search, category)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := db.MenuCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch menu")
		return
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode menu")
		return
	}

	if search == "" && category == "" {
		if data, err := json.Marshal(items); err == nil {
			rdx.SetWithExpiry(publicCacheKey, string(data), time.Minute)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// PublicFilter builds the customer-facing query: available items, optional
// substring match on the name, optional exact category.
func PublicFilter(search, category string) bson.M {
	filter := bson.M{"is_available": true}
	if search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{
			Pattern: regexp.QuoteMeta(search),
			Options: "i",
		}}
	}
	if category != "" {
		filter["category"] = category
	}
	return filter
}
