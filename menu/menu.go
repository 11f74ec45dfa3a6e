package menu

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vanita/db"
	"vanita/filemgr"
	"vanita/models"
	"vanita/notify"
	"vanita/rdx"
	"vanita/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const publicCacheKey = "menu:public"

// GetMenuItems returns every menu item, newest first. Admin view: includes
// unavailable items.
func GetMenuItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := db.MenuCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch menu items")
		return
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode menu items")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// CreateMenuItem handles the multipart admin form, optional image included.
func CreateMenuItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(filemgr.MaxUploadSize + 1<<20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	item := models.MenuItem{
		MenuID:      "m" + utils.GenerateRandomString(14),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Type:        strings.TrimSpace(r.FormValue("type")),
		IsAvailable: true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid price value")
		return
	}
	item.Price = price

	if v := r.FormValue("is_available"); v != "" {
		item.IsAvailable = v == "true"
	}

	if msg := validateMenuFields(item.Name, item.Price, item.Type); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	imageURL, thumbURL, err := filemgr.SaveFormFile(r.MultipartForm, "image", false)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid image: "+err.Error())
		return
	}
	item.ImageURL = imageURL
	item.ThumbURL = thumbURL

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.MenuCollection.InsertOne(ctx, item); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create menu item")
		return
	}

	invalidateCache()
	notify.Emit(ctx, notify.Event{Type: notify.EventMenuItemAdded, Data: item})

	utils.RespondWithJSON(w, http.StatusOK, item)
}

// UpdateMenuItem applies a partial update; only fields present in the form
// are touched.
func UpdateMenuItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	menuID := ps.ByName("id")

	if err := r.ParseMultipartForm(filemgr.MaxUploadSize + 1<<20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	update := bson.M{"updated_at": time.Now()}

	if name := r.FormValue("name"); name != "" {
		if len(name) > 100 {
			utils.RespondWithError(w, http.StatusBadRequest, "Name must be between 1 and 100 characters")
			return
		}
		update["name"] = strings.TrimSpace(name)
	}
	if desc := r.FormValue("description"); desc != "" {
		update["description"] = strings.TrimSpace(desc)
	}
	if category := r.FormValue("category"); category != "" {
		update["category"] = strings.TrimSpace(category)
	}
	if typ := r.FormValue("type"); typ != "" {
		if typ != models.TypeVeg && typ != models.TypeNonVeg {
			utils.RespondWithError(w, http.StatusBadRequest, "Type must be veg or non-veg")
			return
		}
		update["type"] = typ
	}
	if priceStr := r.FormValue("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid price value")
			return
		}
		update["price"] = price
	}
	if v := r.FormValue("is_available"); v != "" {
		update["is_available"] = v == "true"
	}

	imageURL, thumbURL, err := filemgr.SaveFormFile(r.MultipartForm, "image", false)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid image: "+err.Error())
		return
	}
	if imageURL != "" {
		update["image_url"] = imageURL
		update["thumb_url"] = thumbURL
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.MenuItem
	err = db.MenuCollection.FindOneAndUpdate(ctx, bson.M{"menuid": menuID}, bson.M{"$set": update}, opts).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update menu item")
		return
	}

	invalidateCache()
	utils.RespondWithJSON(w, http.StatusOK, item)
}

func DeleteMenuItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	menuID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.MenuCollection.DeleteOne(ctx, bson.M{"menuid": menuID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete menu item")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	invalidateCache()
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Menu item deleted successfully"})
}

func validateMenuFields(name string, price float64, typ string) string {
	if len(name) == 0 || len(name) > 100 {
		return "Name must be between 1 and 100 characters"
	}
	if price < 0 {
		return "Invalid price value. Must be a non-negative number"
	}
	if typ != models.TypeVeg && typ != models.TypeNonVeg {
		return "Type must be veg or non-veg"
	}
	return ""
}

func invalidateCache() {
	if _, err := rdx.RdxDel(publicCacheKey); err != nil {
		log.Printf("menu cache invalidation failed: %v", err)
	}
}
