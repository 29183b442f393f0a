package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/bistro/config"
	"github.com/ray-remotestate/bistro/database"
	"github.com/ray-remotestate/bistro/database/dbhelper"
	"github.com/ray-remotestate/bistro/middlewares"
	"github.com/ray-remotestate/bistro/models"
	"github.com/ray-remotestate/bistro/utils"
)

func Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}

	if req.Username == "" || req.Password == "" {
		utils.WriteError(w, fmt.Errorf("%w: username and password are required", models.ErrValidation))
		return
	}
	if len(req.Password) < 6 {
		utils.WriteError(w, fmt.Errorf("%w: password must be at least 6 characters", models.ErrValidation))
		return
	}

	exists, err := dbhelper.IsUserExists(req.Username)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if exists {
		utils.WriteError(w, fmt.Errorf("%w: username %q is taken", models.ErrValidation, req.Username))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var userID uuid.UUID
	txErr := database.Tx(func(tx *sql.Tx) error {
		userID, err = dbhelper.CreateUser(tx, req.Username, hashedPassword)
		return err
	})
	if txErr != nil {
		logrus.WithError(txErr).Error("failed to register user")
		utils.WriteError(w, txErr)
		return
	}

	accToken, refToken, err := middlewares.GenerateTokens(userID, req.Username, nil)
	if err != nil {
		logrus.WithError(err).Error("failed to generate tokens")
		utils.WriteError(w, err)
		return
	}
	setRefreshCookie(w, refToken)

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id":      userID,
		"username":     req.Username,
		"access_token": accToken,
	})
}

func Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}

	if req.Username == "" || req.Password == "" {
		utils.WriteError(w, fmt.Errorf("%w: username and password required", models.ErrValidation))
		return
	}

	userID, err := dbhelper.GetUserByPassword(req.Username, req.Password)
	if err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid credentials", models.ErrUnauthenticated))
		return
	}

	roles, err := dbhelper.GetUserRoles(userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	accessToken, refreshToken, err := middlewares.GenerateTokens(userID, req.Username, roles)
	if err != nil {
		logrus.WithError(err).Error("failed to generate tokens")
		utils.WriteError(w, err)
		return
	}
	setRefreshCookie(w, refreshToken)

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      userID,
		"username":     req.Username,
		"roles":        roles,
		"access_token": accessToken,
	})
}

func RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		utils.WriteError(w, fmt.Errorf("%w: refresh token missing", models.ErrUnauthenticated))
		return
	}

	claims := &middlewares.Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return config.SecretKey, nil
	})
	if err != nil || !token.Valid {
		utils.WriteError(w, fmt.Errorf("%w: invalid or expired refresh token", models.ErrUnauthenticated))
		return
	}

	// Roles may have changed since the refresh token was issued.
	roles, err := dbhelper.GetUserRoles(claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	newAccess, newRefresh, err := middlewares.GenerateTokens(claims.UserID, claims.Username, roles)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	setRefreshCookie(w, newRefresh)

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"access_token": newAccess,
	})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "successfully logged out",
	})
}

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}
