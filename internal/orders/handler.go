package orders

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	httperr "github.com/salesboard-lab/project-salesboard/internal/core/errors"
	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/salesboard-lab/project-salesboard/internal/sales"
	"github.com/shopspring/decimal"
)

// createOrderRequest references dimensions by their surrogate keys; the
// caller is expected to know them (this surface does not resolve business
// keys, that is the ingestion pipeline's job).
type createOrderRequest struct {
	OrderID       string          `json:"orderId" binding:"required"`
	Customer      int64           `json:"customer" binding:"required"`
	Product       int64           `json:"product" binding:"required"`
	Region        int64           `json:"region" binding:"required"`
	DateOfSale    string          `json:"dateOfSale" binding:"required"`
	QuantitySold  int             `json:"quantitySold" binding:"min=0"`
	Discount      decimal.Decimal `json:"discount"`
	ShippingCost  decimal.Decimal `json:"shippingCost"`
	PaymentMethod string          `json:"paymentMethod" binding:"required"`
}

type updateOrderRequest struct {
	QuantitySold  *int             `json:"quantitySold" binding:"omitempty,min=0"`
	Discount      *decimal.Decimal `json:"discount"`
	ShippingCost  *decimal.Decimal `json:"shippingCost"`
	PaymentMethod *string          `json:"paymentMethod"`
}

// HandleCreate handles POST /v1/orders.
func (s *Service) HandleCreate(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Invalid order body",
			Details:   err.Error(),
		})
		return
	}

	date, err := time.Parse(sales.DateLayout, req.DateOfSale)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "dateOfSale must be YYYY-MM-DD",
			Details:   err.Error(),
		})
		return
	}

	order := &sales.Order{
		OrderID:       req.OrderID,
		CustomerID:    req.Customer,
		ProductID:     req.Product,
		RegionID:      req.Region,
		DateOfSale:    date,
		QuantitySold:  req.QuantitySold,
		Discount:      req.Discount,
		ShippingCost:  req.ShippingCost,
		PaymentMethod: req.PaymentMethod,
	}
	if err := s.store.CreateOrder(c.Request.Context(), order); err != nil {
		if errors.Is(err, storage.ErrInvalidReference) {
			c.JSON(http.StatusUnprocessableEntity, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidReferenceError,
				Message:   "customer, product or region does not exist",
				Details:   err.Error(),
			})
			return
		}
		writeStorageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// HandleList handles GET /v1/orders.
func (s *Service) HandleList(c *gin.Context) {
	result, err := s.store.ListOrders(c.Request.Context())
	if err != nil {
		writeStorageError(c, err)
		return
	}
	if result == nil {
		result = []*sales.Order{}
	}
	c.JSON(http.StatusOK, result)
}

// HandleGet handles GET /v1/orders/:id.
func (s *Service) HandleGet(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := s.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(c, id)
			return
		}
		writeStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleUpdate handles PUT /v1/orders/:id. Only the measure fields are
// mutable; dimension references and the sale date are fixed at creation.
func (s *Service) HandleUpdate(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Invalid order body",
			Details:   err.Error(),
		})
		return
	}

	order, err := s.store.UpdateOrder(c.Request.Context(), id, storage.OrderUpdate{
		QuantitySold:  req.QuantitySold,
		Discount:      req.Discount,
		ShippingCost:  req.ShippingCost,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(c, id)
			return
		}
		writeStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "order id must be an integer",
		})
		return 0, false
	}
	return id, true
}

func writeNotFound(c *gin.Context, id int64) {
	c.JSON(http.StatusNotFound, httperr.ErrorResponse{
		ErrorType: httperr.HttpNotFoundError,
		Message:   "order not found",
		Details:   map[string]interface{}{"id": id},
	})
}

func writeStorageError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "order storage failure",
		Details:   err.Error(),
	})
}
