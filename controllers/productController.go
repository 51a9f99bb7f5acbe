package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pazar/models"
	"pazar/utils"

	"github.com/Masterminds/squirrel"
	"github.com/go-redis/redis/v8"
)

var rdb *redis.Client

// SetRedis wires the optional popular-products cache. A nil client
// disables caching.
func SetRedis(client *redis.Client) {
	rdb = client
}

const popularProductsCacheKey = "popular_products"

var productDetailColumns = []string{
	"p.id", "p.title", "p.description", "p.price", "p.category_id",
	"p.seller_id", "p.image_url", "p.images", "p.features", "p.created_at",
	"c.name AS category_name", "c.slug AS category_slug",
	"u.email AS seller_email", "u.name AS seller_name",
}

func productDetailsQuery() squirrel.SelectBuilder {
	return QB.Select(productDetailColumns...).
		From("products p").
		LeftJoin("categories c ON p.category_id = c.id").
		LeftJoin("users u ON p.seller_id = u.id")
}

func GetProducts(w http.ResponseWriter, r *http.Request) {
	builder := productDetailsQuery().OrderBy("p.id")

	if slug := r.URL.Query().Get("category"); slug != "" {
		builder = builder.Where(squirrel.Eq{"c.slug": slug})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building products query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	products := []models.ProductDetails{}
	if err := db.Select(&products, query, args...); err != nil {
		logger.Error().Err(err).Msg("fetching products")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, products)
}

func GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	query, args, err := productDetailsQuery().
		Where(squirrel.Eq{"p.id": productID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building product query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var product models.ProductDetails
	if err := db.Get(&product, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.HandleError(w, http.StatusNotFound, "Product not found")
			return
		}
		logger.Error().Err(err).Msg("fetching product")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, product)
}

// GetPopularProducts returns the top 5 products ranked by aggregated
// non-cancelled order quantity. Products with no orders rank with zero.
// The ranking is served from Redis when the cache is warm.
func GetPopularProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if rdb != nil {
		cached, err := rdb.Get(ctx, popularProductsCacheKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msg("reading popular products cache")
		}
		if cached != "" {
			var products []models.PopularProduct
			if err := json.Unmarshal([]byte(cached), &products); err == nil {
				utils.SendJSONResponse(w, http.StatusOK, products)
				return
			}
		}
	}

	columns := append([]string{}, productDetailColumns...)
	columns = append(columns, "COALESCE(SUM(o.quantity), 0) AS total_ordered")

	query, args, err := QB.Select(columns...).
		From("products p").
		LeftJoin("categories c ON p.category_id = c.id").
		LeftJoin("users u ON p.seller_id = u.id").
		LeftJoin("orders o ON o.product_id = p.id AND o.status <> 'cancelled'").
		GroupBy("p.id", "c.name", "c.slug", "u.email", "u.name").
		OrderBy("total_ordered DESC", "p.id DESC").
		Limit(5).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building popular products query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	products := []models.PopularProduct{}
	if err := db.Select(&products, query, args...); err != nil {
		logger.Error().Err(err).Msg("fetching popular products")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if rdb != nil {
		if raw, err := json.Marshal(products); err == nil {
			if err := rdb.Set(ctx, popularProductsCacheKey, raw, time.Minute).Err(); err != nil {
				logger.Error().Err(err).Msg("writing popular products cache")
			}
		}
	}

	utils.SendJSONResponse(w, http.StatusOK, products)
}

type createProductRequest struct {
	Title       string                 `json:"title"`
	Description *string                `json:"description"`
	Price       *float64               `json:"price"`
	CategoryID  *int                   `json:"category_id"`
	ImageURL    *string                `json:"image_url"`
	Images      []string               `json:"images"`
	Features    map[string]interface{} `json:"features"`
	Sizes       []string               `json:"sizes"`
}

func CreateProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" || req.Price == nil {
		utils.HandleError(w, http.StatusBadRequest, "Title and price required")
		return
	}

	// Offered sizes live inside the features map under the "sizes" key.
	features := req.Features
	if len(req.Sizes) > 0 {
		if features == nil {
			features = map[string]interface{}{}
		}
		features["sizes"] = req.Sizes
	}

	var featuresRaw *string
	if len(features) > 0 {
		raw, err := json.Marshal(features)
		if err != nil {
			utils.HandleError(w, http.StatusBadRequest, "Invalid features")
			return
		}
		s := string(raw)
		featuresRaw = &s
	}

	var imagesRaw *string
	if len(req.Images) > 0 {
		raw, err := json.Marshal(req.Images)
		if err != nil {
			utils.HandleError(w, http.StatusBadRequest, "Invalid images")
			return
		}
		s := string(raw)
		imagesRaw = &s
	}

	query, args, err := QB.Insert("products").
		Columns("title", "description", "price", "category_id", "seller_id", "image_url", "images", "features").
		Values(req.Title, req.Description, *req.Price, req.CategoryID, claims.UserID, req.ImageURL, imagesRaw, featuresRaw).
		Suffix("RETURNING id, title, description, price, category_id, seller_id, image_url, images, features, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building product insert")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var product models.Product
	if err := db.QueryRowx(query, args...).StructScan(&product); err != nil {
		logger.Error().Err(err).Msg("creating product")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, product)
}

// DeleteProduct removes a product. Admins may delete any product,
// everyone else only their own; the ownership filter lives in the
// DELETE itself so a missing row and a foreign row are indistinguishable.
func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productID := r.PathValue("id")
	if productID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	builder := QB.Delete("products").Where(squirrel.Eq{"id": productID})
	if claims.Role != "admin" {
		builder = builder.Where(squirrel.Eq{"seller_id": claims.UserID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building product delete")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	result, err := db.Exec(query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			utils.HandleError(w, http.StatusConflict, "Product has related orders, cannot delete")
			return
		}
		logger.Error().Err(err).Msg("deleting product")
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
		utils.HandleError(w, http.StatusNotFound, "Product not found or unauthorized")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Product deleted",
	})
}

// UploadImage stores a product image under uploads/ and returns its URL.
func UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentUser(r); !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	file, handler, err := r.FormFile("image")
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	imgPath, err := utils.SaveImageFile(file, "products", handler.Filename)
	if err != nil {
		logger.Error().Err(err).Msg("saving image")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, map[string]string{
		"url": "/" + strings.ReplaceAll(imgPath, "\\", "/"),
	})
}
