package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prilavok/catalog-service/internal/database"
)

// CategoryNode is one node of the category tree returned by the API
type CategoryNode struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	ParentID *string         `json:"parentId"`
	Folder   string          `json:"folder"`
	Products []string        `json:"products"`
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree assembles the persisted flat category list into a tree.
// A category whose parentId does not resolve is dropped, not promoted to a
// root.
func BuildCategoryTree(categories []database.Category) []*CategoryNode {
	nodes := make(map[string]*CategoryNode, len(categories))
	for _, c := range categories {
		products := c.Products
		if products == nil {
			products = []string{}
		}
		nodes[c.ID] = &CategoryNode{
			ID:       c.ID,
			Name:     c.Name,
			ParentID: c.ParentID,
			Folder:   c.Folder,
			Products: products,
			Children: []*CategoryNode{},
		}
	}

	roots := []*CategoryNode{}
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}

// GetCategories returns the category tree
// GET /api/categories
func GetCategories(c *gin.Context) {
	categories, err := database.Catalog().ListCategories(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch categories",
		})
		return
	}

	c.JSON(http.StatusOK, BuildCategoryTree(categories))
}
