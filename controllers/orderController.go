package controllers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pazar/models"
	"pazar/utils"

	"github.com/Masterminds/squirrel"
	"github.com/segmentio/kafka-go"
)

var kafkaWriter *kafka.Writer

// SetKafkaWriter wires the optional order event publisher. A nil writer
// disables publishing.
func SetKafkaWriter(writer *kafka.Writer) {
	kafkaWriter = writer
}

var orderColumns = []string{
	"id", "buyer_id", "seller_id", "product_id",
	"quantity", "total_price", "status", "sizes", "created_at",
}

type createOrderRequest struct {
	ProductID int      `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Sizes     []string `json:"sizes"`
}

// CreateOrder validates a purchase against current product state and
// persists it. The total and the seller are snapshots taken at creation
// time; later product edits never touch existing orders.
func CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProductID == 0 || req.Quantity == 0 {
		utils.HandleError(w, http.StatusBadRequest, "product_id and quantity required")
		return
	}

	query, args, err := QB.Select("id", "title", "price", "seller_id").
		From("products").
		Where(squirrel.Eq{"id": req.ProductID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building product lookup")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var product models.Product
	if err := db.Get(&product, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.HandleError(w, http.StatusNotFound, "Product not found")
			return
		}
		logger.Error().Err(err).Msg("fetching product")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if product.SellerID == claims.UserID {
		utils.HandleError(w, http.StatusBadRequest, "You cannot buy your own product")
		return
	}

	totalPrice := product.Price * float64(req.Quantity)
	sizesRaw := utils.EncodeSizes(req.Sizes)

	order, err := insertOrder(claims.UserID, product.SellerID, req.ProductID, req.Quantity, totalPrice, sizesRaw)
	if err != nil && sizesRaw != nil && isUndefinedColumn(err) {
		// Schemas predating the sizes column: retry once without it.
		order, err = insertOrder(claims.UserID, product.SellerID, req.ProductID, req.Quantity, totalPrice, nil)
	}
	if err != nil {
		logger.Error().Err(err).Msg("creating order")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	order.Sizes = utils.DecodeSizes(order.SizesRaw)

	publishOrderEvent(r.Context(), order)

	utils.SendJSONResponse(w, http.StatusCreated, order)
}

func insertOrder(buyerID, sellerID, productID, quantity int, totalPrice float64, sizesRaw *string) (*models.Order, error) {
	columns := []string{"buyer_id", "seller_id", "product_id", "quantity", "total_price", "status"}
	values := []interface{}{buyerID, sellerID, productID, quantity, totalPrice, "pending"}
	returning := orderColumns

	if sizesRaw != nil {
		columns = append(columns, "sizes")
		values = append(values, *sizesRaw)
	} else {
		returning = []string{
			"id", "buyer_id", "seller_id", "product_id",
			"quantity", "total_price", "status", "created_at",
		}
	}

	query, args, err := QB.Insert("orders").
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING " + strings.Join(returning, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := db.QueryRowx(query, args...).StructScan(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// publishOrderEvent writes a created order to the order-events topic.
// Publishing is best effort; a broker failure never fails the request.
func publishOrderEvent(ctx context.Context, order *models.Order) {
	if kafkaWriter == nil {
		return
	}

	raw, err := json.Marshal(order)
	if err != nil {
		logger.Error().Err(err).Msg("marshalling order event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-created-%d", order.ID)),
		Value: raw,
	}
	if err := kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Int("order_id", order.ID).Msg("publishing order event")
	}
}

// GetMyOrders lists orders where the caller is buyer or seller, newest
// first, enriched with product and counterparty details.
func GetMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query, args, err := QB.Select(
		"o.id", "o.buyer_id", "o.seller_id", "o.product_id",
		"o.quantity", "o.total_price", "o.status", "o.sizes", "o.created_at",
		"p.title AS product_title", "p.image_url AS product_image",
		"b.email AS buyer_email", "s.email AS seller_email").
		From("orders o").
		LeftJoin("products p ON o.product_id = p.id").
		LeftJoin("users b ON o.buyer_id = b.id").
		LeftJoin("users s ON o.seller_id = s.id").
		Where(squirrel.Or{
			squirrel.Eq{"o.buyer_id": claims.UserID},
			squirrel.Eq{"o.seller_id": claims.UserID},
		}).
		OrderBy("o.created_at DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building orders query")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	orders := []models.OrderDetails{}
	if err := db.Select(&orders, query, args...); err != nil {
		logger.Error().Err(err).Msg("fetching orders")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	for i := range orders {
		orders[i].Sizes = utils.DecodeSizes(orders[i].SizesRaw)
	}

	utils.SendJSONResponse(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus applies a status change to the caller's order. The
// seller filter sits in the UPDATE itself, so a missing order and
// someone else's order produce the same NotFound outcome.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentUser(r)
	if !ok {
		utils.HandleError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID := r.PathValue("id")
	if orderID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Order ID is required")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Status == "" {
		utils.HandleError(w, http.StatusBadRequest, "Status required")
		return
	}

	query, args, err := QB.Update("orders").
		Set("status", req.Status).
		Where(squirrel.Eq{"id": orderID, "seller_id": claims.UserID}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("building status update")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	var order models.Order
	if err := db.QueryRowx(query, args...).StructScan(&order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.HandleError(w, http.StatusNotFound, "Order not found or unauthorized")
			return
		}
		logger.Error().Err(err).Msg("updating order status")
		utils.HandleError(w, http.StatusInternalServerError, "Server error")
		return
	}

	order.Sizes = utils.DecodeSizes(order.SizesRaw)

	utils.SendJSONResponse(w, http.StatusOK, order)
}
