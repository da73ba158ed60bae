// Package orders is the thin order-management surface over the fact table.
// It is deliberately separate from the ingestion pipeline: ingestion only
// appends, while this surface exists for manual corrections and inspection.
package orders

import (
	"github.com/gin-gonic/gin"
	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
)

type Service struct {
	store storage.OrderStore
}

func NewService(store storage.OrderStore) *Service {
	if store == nil {
		panic("orders: store must not be nil")
	}
	return &Service{store: store}
}

// RegisterRoutes registers the order-management routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/orders", s.HandleCreate)
	r.GET("/v1/orders", s.HandleList)
	r.GET("/v1/orders/:id", s.HandleGet)
	r.PUT("/v1/orders/:id", s.HandleUpdate)
}
