package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prilavok/catalog-service/internal/database"
)

// GetProducts returns persisted products, optionally filtered by feed folder
// GET /api/products?folder=vendor1
func GetProducts(c *gin.Context) {
	products, err := database.Catalog().ProductsByFolder(c.Request.Context(), c.Query("folder"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch products",
		})
		return
	}

	if products == nil {
		products = []database.Product{}
	}
	c.JSON(http.StatusOK, products)
}
