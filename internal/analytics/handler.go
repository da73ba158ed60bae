package analytics

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httperr "github.com/salesboard-lab/project-salesboard/internal/core/errors"
	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/salesboard-lab/project-salesboard/internal/sales"
)

// RegisterRoutes registers the analytics API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/analytics/revenue", s.HandleRevenue)
	r.GET("/v1/analytics/top-products", s.HandleTopProducts)
	r.GET("/v1/analytics/customer-analysis", s.HandleCustomerAnalysis)
}

// dateRangeQuery carries the mandatory date parameters shared by all three
// endpoints, as YYYY-MM-DD strings.
type dateRangeQuery struct {
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
}

func (q dateRangeQuery) parse() (storage.DateRange, error) {
	start, err := time.Parse(sales.DateLayout, q.StartDate)
	if err != nil {
		return storage.DateRange{}, err
	}
	end, err := time.Parse(sales.DateLayout, q.EndDate)
	if err != nil {
		return storage.DateRange{}, err
	}
	return storage.DateRange{Start: start, End: end}, nil
}

// HandleRevenue handles GET /v1/analytics/revenue
// Query parameters: startDate, endDate, groupBy (optional).
// Responds with {"totalRevenue": n} ungrouped, or an array of {name, revenue}.
func (s *Service) HandleRevenue(c *gin.Context) {
	var query struct {
		dateRangeQuery
		GroupBy string `form:"groupBy" binding:"omitempty,oneof=product category region"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeBadRequest(c, "Invalid query parameters", err)
		return
	}
	r, err := query.parse()
	if err != nil {
		writeBadRequest(c, "Dates must be YYYY-MM-DD", err)
		return
	}

	result, err := s.Revenue(c.Request.Context(), r, storage.GroupBy(query.GroupBy))
	if err != nil {
		writeQueryError(c, err)
		return
	}

	if result.Grouped {
		groups := result.Groups
		if groups == nil {
			groups = []storage.GroupRevenue{}
		}
		c.JSON(http.StatusOK, groups)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalRevenue": result.Total})
}

// HandleTopProducts handles GET /v1/analytics/top-products
// Query parameters: startDate, endDate, limit (optional, default 10),
// category (optional), region (optional).
func (s *Service) HandleTopProducts(c *gin.Context) {
	var query struct {
		dateRangeQuery
		Limit    int    `form:"limit"`
		Category string `form:"category"`
		Region   string `form:"region"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeBadRequest(c, "Invalid query parameters", err)
		return
	}
	r, err := query.parse()
	if err != nil {
		writeBadRequest(c, "Dates must be YYYY-MM-DD", err)
		return
	}

	result, err := s.TopProducts(c.Request.Context(), r, storage.TopProductsFilter{
		Category: query.Category,
		Region:   query.Region,
		Limit:    query.Limit,
	})
	if err != nil {
		writeQueryError(c, err)
		return
	}
	if result == nil {
		result = []storage.ProductQuantity{}
	}
	c.JSON(http.StatusOK, result)
}

// HandleCustomerAnalysis handles GET /v1/analytics/customer-analysis
// Query parameters: startDate, endDate.
func (s *Service) HandleCustomerAnalysis(c *gin.Context) {
	var query dateRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeBadRequest(c, "Invalid query parameters", err)
		return
	}
	r, err := query.parse()
	if err != nil {
		writeBadRequest(c, "Dates must be YYYY-MM-DD", err)
		return
	}

	result, err := s.CustomerAnalysis(c.Request.Context(), r)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func writeBadRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidRequestError,
		Message:   message,
		Details:   err.Error(),
	})
}

func writeQueryError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidRange) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRangeError,
			Message:   "Invalid analytics query",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to execute analytics query",
		Details:   err.Error(),
	})
}
