package api

import (
	"bytes"
	"net/http"
	"net/url"

	"flashcards_go_backend/internal/auth"
	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/models"
	"flashcards_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func listCollectionsHandler(collectionService *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		collections, err := collectionService.List(c.Request.Context(), auth.UserID(c))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"collections": collections})
	}
}

func createCollectionHandler(collectionService *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Name       string             `json:"name"`
			Flashcards []models.Flashcard `json:"flashcards"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid request body"))
			return
		}

		collection, err := collectionService.Save(c.Request.Context(), auth.UserID(c), request.Name, request.Flashcards)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, collection)
	}
}

func getCollectionHandler(collectionService *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		collection, err := collectionService.Get(c.Request.Context(), auth.UserID(c), c.Param("name"))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, collection)
	}
}

func deleteCollectionHandler(collectionService *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := collectionService.Delete(c.Request.Context(), auth.UserID(c), c.Param("name")); err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func toggleFavoriteHandler(collectionService *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		collections, err := collectionService.ToggleFavorite(c.Request.Context(), auth.UserID(c), c.Param("name"))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"collections": collections})
	}
}

func exportCollectionHandler(collectionService *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		// Rendered into memory first so failures still get a JSON error.
		var buf bytes.Buffer
		if err := collectionService.ExportPDF(c.Request.Context(), auth.UserID(c), name, &buf); err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name)+".pdf")
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}
