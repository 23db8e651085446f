package handler

import (
	"errors"
	"net/http"

	"houseprice/internal/form"
	"houseprice/internal/model"

	"github.com/gin-gonic/gin"
)

// PredictHandler handles the JSON prediction API
type PredictHandler struct {
	newForm func() *form.Form
}

// NewPredictHandler creates a new prediction API handler.
// Every request is served by a fresh form built with newForm.
func NewPredictHandler(newForm func() *form.Form) *PredictHandler {
	return &PredictHandler{
		newForm: newForm,
	}
}

// Predict handles POST /api/v1/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	values, err := form.StringifyValues(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	f := h.newForm()
	if err := f.ApplyValues(values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := f.Submit(c.Request.Context())
	if errors.Is(err, form.ErrSubmitInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	if view.Error != "" {
		c.JSON(http.StatusBadGateway, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Fields handles GET /api/v1/fields
func (h *PredictHandler) Fields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": model.Fields})
}
