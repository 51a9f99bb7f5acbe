package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"pazar/models"
	"pazar/utils"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

var (
	db     *sqlx.DB
	QB     = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	userColumns = []string{"id", "email", "name", "role", "created_at"}
)

func SetDB(database *sqlx.DB) {
	db = database
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func isUndefinedColumn(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42703"
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Role     string  `json:"role"`
}

func Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.HandleError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("hashing password")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	role := req.Role
	if role == "" {
		role = "customer"
	}

	query, args, err := QB.Insert("users").
		Columns("email", "password_hash", "name", "role").
		Values(req.Email, hashed, req.Name, role).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building register query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var user models.User
	if err := db.QueryRowx(query, args...).StructScan(&user); err != nil {
		if isUniqueViolation(err) {
			utils.HandleError(w, http.StatusBadRequest, "Email already used")
			return
		}
		logger.Error().Err(err).Msg("creating user")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		logger.Error().Err(err).Msg("signing token")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.HandleError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	query, args, err := QB.Select("id", "email", "password_hash", "name", "role", "created_at").
		From("users").
		Where(squirrel.Eq{"email": req.Email}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building login query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var user models.User
	if err := db.Get(&user, query, args...); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		logger.Error().Err(err).Msg("signing token")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

type profileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// UpdateProfile updates the authenticated user's name, email and
// password. Each field is applied only when provided; a password change
// requires the current password to verify.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query, args, err := QB.Select("id", "email", "password_hash", "name", "role", "created_at").
		From("users").
		Where(squirrel.Eq{"id": claims.UserID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building profile query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var user models.User
	if err := db.Get(&user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.HandleError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Error().Err(err).Msg("fetching user")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	update := QB.Update("users").Where(squirrel.Eq{"id": claims.UserID})
	changed := false

	if req.Name != nil {
		update = update.Set("name", req.Name)
		changed = true
	}
	if req.Email != nil {
		if *req.Email == "" {
			utils.HandleError(w, http.StatusBadRequest, "Email cannot be empty")
			return
		}
		update = update.Set("email", *req.Email)
		changed = true
	}
	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			utils.HandleError(w, http.StatusBadRequest, "Current password required")
			return
		}
		if err := utils.CheckPassword(user.Password, req.CurrentPassword); err != nil {
			utils.HandleError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			logger.Error().Err(err).Msg("hashing password")
			utils.HandleError(w, http.StatusInternalServerError, "Server error")
			return
		}
		update = update.Set("password_hash", hashed)
		changed = true
	}

	if !changed {
		utils.HandleError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	query, args, err = update.Suffix("RETURNING " + strings.Join(userColumns, ", ")).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building profile update")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := db.QueryRowx(query, args...).StructScan(&user); err != nil {
		if isUniqueViolation(err) {
			utils.HandleError(w, http.StatusBadRequest, "Email already used")
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			utils.HandleError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Error().Err(err).Msg("updating profile")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated",
		"user":    user,
	})
}
