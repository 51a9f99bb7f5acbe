package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"pazar/models"
	"pazar/utils"

	"github.com/Masterminds/squirrel"
)

type addFavoriteRequest struct {
	ProductID int `json:"product_id"`
}

func AddFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProductID == 0 {
		utils.HandleError(w, http.StatusBadRequest, "product_id required")
		return
	}

	query, args, err := QB.Select("id").
		From("products").
		Where(squirrel.Eq{"id": req.ProductID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building product check")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var productID int
	if err := db.Get(&productID, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.HandleError(w, http.StatusNotFound, "Product not found")
			return
		}
		logger.Error().Err(err).Msg("checking product")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	query, args, err = QB.Insert("favorites").
		Columns("user_id", "product_id").
		Values(claims.UserID, req.ProductID).
		Suffix("RETURNING id, user_id, product_id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building favorite insert")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var favorite models.Favorite
	if err := db.QueryRowx(query, args...).StructScan(&favorite); err != nil {
		if isUniqueViolation(err) {
			utils.HandleError(w, http.StatusConflict, "Product already in favorites")
			return
		}
		logger.Error().Err(err).Msg("creating favorite")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, favorite)
}

func RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productID := r.PathValue("product_id")
	if productID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	query, args, err := QB.Delete("favorites").
		Where(squirrel.Eq{"user_id": claims.UserID, "product_id": productID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building favorite delete")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	result, err := db.Exec(query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("deleting favorite")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.Error().Err(err).Msg("reading delete result")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if affected == 0 {
		utils.HandleError(w, http.StatusNotFound, "Favorite not found")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Removed from favorites",
	})
}

func GetFavorites(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	columns := append([]string{
		"f.id AS favorite_id", "f.created_at AS favorited_at",
	}, productDetailColumns...)

	query, args, err := QB.Select(columns...).
		From("favorites f").
		Join("products p ON f.product_id = p.id").
		LeftJoin("categories c ON p.category_id = c.id").
		LeftJoin("users u ON p.seller_id = u.id").
		Where(squirrel.Eq{"f.user_id": claims.UserID}).
		OrderBy("f.created_at DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building favorites query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	favorites := []models.FavoriteDetails{}
	if err := db.Select(&favorites, query, args...); err != nil {
		logger.Error().Err(err).Msg("fetching favorites")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, favorites)
}

// CheckFavorite reports whether the caller saved a product. An absent
// identity resolves to false rather than Unauthorized.
func CheckFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.SendJSONResponse(w, http.StatusOK, map[string]bool{"isFavorite": false})
		return
	}

	productID := r.PathValue("product_id")

	query, args, err := QB.Select("id").
		From("favorites").
		Where(squirrel.Eq{"user_id": claims.UserID, "product_id": productID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building favorite check")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var favoriteID int
	err = db.Get(&favoriteID, query, args...)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("checking favorite")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]bool{"isFavorite": err == nil})
}

// GetFavoriteIDs returns the caller's favorited product ids, used to
// hydrate client-side state. An absent identity resolves to an empty
// set, same permissive pattern as CheckFavorite.
func GetFavoriteIDs(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.SendJSONResponse(w, http.StatusOK, map[string][]int{"favoriteIds": {}})
		return
	}

	query, args, err := QB.Select("product_id").
		From("favorites").
		Where(squirrel.Eq{"user_id": claims.UserID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building favorite ids query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	favoriteIDs := []int{}
	if err := db.Select(&favoriteIDs, query, args...); err != nil {
		logger.Error().Err(err).Msg("fetching favorite ids")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string][]int{"favoriteIds": favoriteIDs})
}
