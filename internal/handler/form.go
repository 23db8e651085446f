package handler

import (
	"errors"
	"log"
	"net/http"

	"houseprice/internal/config"
	"houseprice/internal/form"
	"houseprice/internal/model"

	"github.com/gin-gonic/gin"
)

// PageTemplate is the name of the form page template
const PageTemplate = "predict.html"

// FormHandler serves the server-rendered prediction form
type FormHandler struct {
	sessions *form.SessionStore
	cookie   config.SessionConfig
}

// NewFormHandler creates a new form handler
func NewFormHandler(sessions *form.SessionStore, cookie config.SessionConfig) *FormHandler {
	return &FormHandler{
		sessions: sessions,
		cookie:   cookie,
	}
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Field   model.Field
	Value   string
	Options []optionView
}

type pageData struct {
	Fields     []fieldView
	View       form.View
	FieldError string
}

// Show handles GET /predict
func (h *FormHandler) Show(c *gin.Context) {
	f := h.session(c)
	h.render(c, http.StatusOK, f.View(), "")
}

// Submit handles POST /predict
func (h *FormHandler) Submit(c *gin.Context) {
	f := h.session(c)

	// Posted values are not applied while the previous submission is running.
	if view := f.View(); view.Loading() {
		h.render(c, http.StatusConflict, view, form.ErrSubmitInProgress.Error())
		return
	}

	values := make(map[string]string, len(model.Fields))
	for _, field := range model.Fields {
		if value, ok := c.GetPostForm(field.Name); ok {
			values[field.Name] = value
		}
	}
	if err := f.ApplyValues(values); err != nil {
		h.render(c, http.StatusUnprocessableEntity, f.View(), err.Error())
		return
	}

	view, err := f.Submit(c.Request.Context())
	if errors.Is(err, form.ErrSubmitInProgress) {
		h.render(c, http.StatusConflict, view, err.Error())
		return
	}
	if view.Error != "" {
		log.Printf("Prediction failed: %s", view.Error)
	}

	h.render(c, http.StatusOK, view, "")
}

// Reset handles POST /predict/reset
func (h *FormHandler) Reset(c *gin.Context) {
	f := h.session(c)

	if err := f.Reset(); err != nil {
		h.render(c, http.StatusConflict, f.View(), err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/predict")
}

// session resolves the caller's form and refreshes the session cookie
func (h *FormHandler) session(c *gin.Context) *form.Form {
	cookieID, _ := c.Cookie(h.cookie.CookieName)
	id, f := h.sessions.Get(cookieID)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, id, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
	return f
}

func (h *FormHandler) render(c *gin.Context, status int, view form.View, fieldErr string) {
	c.HTML(status, PageTemplate, buildPage(view, fieldErr))
}

func buildPage(view form.View, fieldErr string) pageData {
	data := pageData{
		Fields:     make([]fieldView, 0, len(model.Fields)),
		View:       view,
		FieldError: fieldErr,
	}

	for _, field := range model.Fields {
		fv := fieldView{
			Field: field,
			Value: view.Request.FieldValue(field.Key),
		}
		for _, choice := range field.Choices {
			fv.Options = append(fv.Options, optionView{
				Value:    choice.Value,
				Label:    choice.Label,
				Selected: choice.Value == fv.Value,
			})
		}
		data.Fields = append(data.Fields, fv)
	}
	return data
}
