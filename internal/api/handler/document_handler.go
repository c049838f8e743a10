package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parentdesk/portal-auth/internal/core/ports"
)

// DocumentHandler serves one guarded document collection (parents,
// analytics). The collection is fixed at registration; the rule middleware
// in front of each route has already authorized the operation.
type DocumentHandler struct {
	repo       ports.DocumentRepository
	collection string
}

func NewDocumentHandler(repo ports.DocumentRepository, collection string) *DocumentHandler {
	return &DocumentHandler{repo: repo, collection: collection}
}

// Get returns one document.
//
// @Summary      Read a document
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "Document id"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /{collection}/{id} [get]
func (h *DocumentHandler) Get(c echo.Context) error {
	doc, err := h.repo.Get(c.Request().Context(), h.collection, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// Put stores one document under the given id. POST and PUT share this
// handler; the rule middleware distinguished create from update when it
// authorized the method.
//
// @Summary      Create or replace a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Document id"
// @Param        body  body      map[string]any  true  "Document body"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /{collection}/{id} [put]
func (h *DocumentHandler) Put(c echo.Context) error {
	var doc ports.Document
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(doc) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty document")
	}

	if err := h.repo.Put(c.Request().Context(), h.collection, c.Param("id"), doc); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// Delete removes one document.
//
// @Summary      Delete a document
// @Tags         documents
// @Param        id  path  string  true  "Document id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /{collection}/{id} [delete]
func (h *DocumentHandler) Delete(c echo.Context) error {
	if err := h.repo.Delete(c.Request().Context(), h.collection, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
