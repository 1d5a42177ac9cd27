package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/prilavok/catalog-service/config"
	"github.com/prilavok/catalog-service/internal/database"
	"github.com/prilavok/catalog-service/internal/importer"
)

// importGroup collapses concurrent import requests into one running import;
// callers arriving while a run is in flight share its result.
var importGroup singleflight.Group

// RunImport triggers a full catalog import and returns its summary
// POST /api/import
func RunImport(c *gin.Context) {
	result, err, shared := importGroup.Do("import", func() (interface{}, error) {
		cfg := config.Get()
		imp := importer.New(database.Catalog(), cfg.Content.BaseDir, log.Logger)
		// detached from the request context: an aborted client must not
		// abort the transaction mid-run
		return imp.Run(context.Background())
	})
	if err != nil {
		log.Error().Err(err).Msg("Catalog import failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Catalog import failed",
		})
		return
	}

	if shared {
		log.Info().Msg("import request joined an in-flight run")
	}
	c.JSON(http.StatusOK, result.(*importer.Summary))
}
