package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"houseprice/internal/config"
	"houseprice/internal/form"
	"houseprice/internal/service"
	"houseprice/internal/web"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstream is a fake prediction service recording the bodies it receives.
// When hold is set, each request signals arrived and waits for hold to close.
type upstream struct {
	mu      sync.Mutex
	bodies  []map[string]any
	status  int
	reply   string
	arrived chan struct{}
	hold    chan struct{}
	server  *httptest.Server
}

func newUpstream(t *testing.T, status int, reply string) *upstream {
	t.Helper()
	u := &upstream{status: status, reply: reply}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		u.mu.Lock()
		u.bodies = append(u.bodies, body)
		u.mu.Unlock()

		if u.hold != nil {
			u.arrived <- struct{}{}
			<-u.hold
		}

		w.WriteHeader(u.status)
		_, _ = w.Write([]byte(u.reply))
	}))
	t.Cleanup(u.server.Close)
	return u
}

// holdRequests makes the upstream block every request until the returned
// release func is called. Release is also run on cleanup.
func (u *upstream) holdRequests(t *testing.T) (release func()) {
	t.Helper()
	u.arrived = make(chan struct{}, 1)
	u.hold = make(chan struct{})
	release = sync.OnceFunc(func() { close(u.hold) })
	t.Cleanup(release)
	return release
}

func (u *upstream) requests() []map[string]any {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]map[string]any(nil), u.bodies...)
}

func (u *upstream) newForm() *form.Form {
	client := service.NewPredictionClient(&config.PredictionConfig{APIURL: u.server.URL})
	return form.New(client)
}

func postForm(router http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newTestRouter(t *testing.T, u *upstream) *gin.Engine {
	t.Helper()

	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	sessions := form.NewSessionStore(0, u.newForm)
	formHandler := NewFormHandler(sessions, config.SessionConfig{CookieName: "pp_session"})
	predictHandler := NewPredictHandler(u.newForm)

	router.GET("/predict", formHandler.Show)
	router.POST("/predict", formHandler.Submit)
	router.POST("/predict/reset", formHandler.Reset)
	router.POST("/api/v1/predict", predictHandler.Predict)
	router.GET("/api/v1/fields", predictHandler.Fields)
	return router
}
