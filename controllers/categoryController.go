package controllers

import (
	"encoding/json"
	"net/http"

	"pazar/models"
	"pazar/utils"
)

func GetCategories(w http.ResponseWriter, r *http.Request) {
	query, args, err := QB.Select("id", "name", "slug").
		From("categories").
		OrderBy("id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building categories query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	categories := []models.Category{}
	if err := db.Select(&categories, query, args...); err != nil {
		logger.Error().Err(err).Msg("fetching categories")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, categories)
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Slug == "" {
		utils.HandleError(w, http.StatusBadRequest, "Name and slug required")
		return
	}

	query, args, err := QB.Insert("categories").
		Columns("name", "slug").
		Values(req.Name, req.Slug).
		Suffix("RETURNING id, name, slug").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building category insert")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var category models.Category
	if err := db.QueryRowx(query, args...).StructScan(&category); err != nil {
		if isUniqueViolation(err) {
			utils.HandleError(w, http.StatusConflict, "Category slug already exists")
			return
		}
		logger.Error().Err(err).Msg("creating category")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, category)
}
