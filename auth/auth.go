package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"vanita/db"
	"vanita/globals"
	"vanita/middleware"
	"vanita/models"
	"vanita/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTTL     = 7 * 24 * time.Hour // 1 week, matches the cookie lifetime
	accessTokenTTL = 12 * time.Hour
)

type credentials struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// findAdminByMobile is a variable so tests can stub the credential lookup.
var findAdminByMobile = func(ctx context.Context, mobile string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := db.AdminCollection.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// Login handles POST /api/login. Unknown mobile and wrong password return
// the same generic message so account existence is not leaked.
func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if creds.Mobile == "" || creds.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Mobile and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	admin, err := findAdminByMobile(ctx, creds.Mobile)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid mobile or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid mobile or password")
		return
	}

	tokenString, err := generateAccessToken(*admin)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate refresh token")
		return
	}

	session := models.Session{
		SID:       "s" + utils.GenerateRandomString(14),
		AdminID:   admin.AdminID,
		TokenHash: hashToken(refreshToken),
		Expire:    time.Now().Add(sessionTTL),
	}
	if _, err := db.SessionsCollection.InsertOne(ctx, session); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(accessTokenTTL.Seconds()),
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":      "Login successful",
		"token":        tokenString,
		"refreshToken": refreshToken,
		"userid":       admin.AdminID,
	})
}

// Logout handles POST /api/logout: drops the admin's sessions and clears the
// cookie.
func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	adminID, _ := r.Context().Value(globals.UserIDKey).(string)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if adminID != "" {
		if _, err := db.SessionsCollection.DeleteMany(ctx, bson.M{"adminid": adminID}); err != nil {
			log.Printf("logout: delete sessions for %s: %v", adminID, err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out"})
}

// CurrentUser handles GET /api/auth/user.
func CurrentUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	adminID, _ := r.Context().Value(globals.UserIDKey).(string)
	mobile, _ := r.Context().Value(globals.MobileKey).(string)
	if adminID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"id":      adminID,
		"mobile":  mobile,
		"isAdmin": true,
	})
}

// Refresh handles POST /api/auth/refresh, exchanging a live refresh token
// for a fresh access token.
func Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Refresh token required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var session models.Session
	err := db.SessionsCollection.FindOne(ctx, bson.M{
		"token_hash": hashToken(body.RefreshToken),
		"expire":     bson.M{"$gt": time.Now()},
	}).Decode(&session)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	var admin models.AdminUser
	if err := db.AdminCollection.FindOne(ctx, bson.M{"adminid": session.AdminID}).Decode(&admin); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	tokenString, err := generateAccessToken(admin)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": tokenString})
}

// EnsureDefaultAdmin seeds the admin credential from ADMIN_MOBILE and
// ADMIN_PASSWORD on first boot so a fresh deployment is reachable.
func EnsureDefaultAdmin(ctx context.Context) error {
	mobile := os.Getenv("ADMIN_MOBILE")
	password := os.Getenv("ADMIN_PASSWORD")
	if mobile == "" || password == "" {
		return nil
	}

	err := db.AdminCollection.FindOne(ctx, bson.M{"mobile": mobile}).Err()
	if err == nil {
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.AdminCollection.InsertOne(ctx, models.AdminUser{
		AdminID:      "a" + utils.GenerateRandomString(10),
		Mobile:       mobile,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	})
	return err
}

func generateAccessToken(admin models.AdminUser) (string, error) {
	claims := &middleware.Claims{
		Mobile: admin.Mobile,
		UserID: admin.AdminID,
		Role:   []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

// Generates a random refresh token
func generateRefreshToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

// Hashes a given token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
