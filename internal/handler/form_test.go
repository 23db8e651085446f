package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestFormHandler_ShowRendersDefaults(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"predicted_price": 1}`)
	router := newTestRouter(t, u)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/predict", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`name="floor_area"`,
		`<option value="T" selected>Terraced</option>`,
		`<option value="England and Wales: 1967-1975" selected>`,
		"Predict Price",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Page is missing %q", want)
		}
	}
	if strings.Contains(body, "result-card") {
		t.Error("Expected no result on a fresh form")
	}
	if len(w.Result().Cookies()) == 0 {
		t.Error("Expected a session cookie")
	}
	if len(u.requests()) != 0 {
		t.Error("Showing the form must not call the prediction service")
	}
}

func TestFormHandler_SubmitSuccess(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"predicted_price": 212500}`)
	router := newTestRouter(t, u)

	values := url.Values{
		"postcode":          {""},
		"floor_area":        {"85"},
		"energy_efficiency": {"72"},
		"rooms":             {"4"},
		"property_type":     {"T"},
		"tenure":            {"F"},
		"age_band":          {"England and Wales: 1967-1975"},
		"built_form":        {"Semi-Detached"},
		"year":              {""},
		"new_build":         {""},
		"epc_rating":        {""},
	}
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "£212,500") {
		t.Error("Expected the formatted price in the page")
	}
	if strings.Contains(w.Body.String(), `class="alert"`) {
		t.Error("Expected no error on success")
	}

	bodies := u.requests()
	if len(bodies) != 1 {
		t.Fatalf("Upstream received %d requests, want 1", len(bodies))
	}
	if bodies[0]["TOTAL_FLOOR_AREA"] != float64(85) || bodies[0]["year"] != nil {
		t.Errorf("Unexpected upstream body %v", bodies[0])
	}
}

func TestFormHandler_SubmitServiceError(t *testing.T) {
	u := newUpstream(t, http.StatusUnprocessableEntity, "invalid postcode")
	router := newTestRouter(t, u)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("postcode=ZZ"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "invalid postcode") {
		t.Error("Expected the service message in the page")
	}
	if strings.Contains(body, "result-card") {
		t.Error("Expected no price after a failure")
	}
}

func TestFormHandler_SubmitInvalidField(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"predicted_price": 1}`)
	router := newTestRouter(t, u)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("property_type=Castle"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid choice") {
		t.Error("Expected the field error in the page")
	}
	if len(u.requests()) != 0 {
		t.Error("An invalid field must not reach the prediction service")
	}
}

func TestFormHandler_SessionKeepsValues(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"predicted_price": 99000}`)
	router := newTestRouter(t, u)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("rooms=7"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Expected a session cookie")
	}

	show := httptest.NewRequest(http.MethodGet, "/predict", nil)
	show.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, show)

	body := w.Body.String()
	if !strings.Contains(body, `value="7"`) || !strings.Contains(body, "£99,000") {
		t.Error("Expected the session's values and result to be rendered again")
	}

	reset := httptest.NewRequest(http.MethodPost, "/predict/reset", nil)
	reset.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, reset)
	if w.Code != http.StatusSeeOther {
		t.Errorf("Reset status = %d, want 303", w.Code)
	}

	show = httptest.NewRequest(http.MethodGet, "/predict", nil)
	show.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, show)
	if strings.Contains(w.Body.String(), "£99,000") {
		t.Error("Expected the result to be cleared by reset")
	}
}

func TestFormHandler_RejectedBatchLeavesSessionUnchanged(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"predicted_price": 1}`)
	router := newTestRouter(t, u)

	w := postForm(router, "/predict", "rooms=3&floor_area=90&built_form=castle")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Status = %d, want 422", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, `value="3"`) || strings.Contains(body, `value="90"`) {
		t.Error("Expected no field of a rejected batch to be applied")
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Expected a session cookie")
	}
	show := httptest.NewRequest(http.MethodGet, "/predict", nil)
	show.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, show)
	if strings.Contains(w.Body.String(), `value="3"`) {
		t.Error("Expected the session record to be unchanged after a rejected batch")
	}
}

func TestFormHandler_SubmitWhileLoadingKeepsRecord(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"predicted_price": 1000}`)
	release := u.holdRequests(t)
	router := newTestRouter(t, u)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/predict", nil))
	cookie := w.Result().Cookies()[0]

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- postForm(router, "/predict", "rooms=4", cookie)
	}()

	select {
	case <-u.arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the first submission to reach the service")
	}

	w = postForm(router, "/predict", "rooms=9", cookie)
	if w.Code != http.StatusConflict {
		t.Errorf("Status = %d, want 409", w.Code)
	}
	if strings.Contains(w.Body.String(), `value="9"`) {
		t.Error("Expected posted values to be ignored while a submission is running")
	}

	release()
	w = <-first
	if w.Code != http.StatusOK {
		t.Fatalf("First submission status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `value="4"`) || !strings.Contains(body, "£1,000") {
		t.Error("Expected the first submission's values and price")
	}
	if len(u.requests()) != 1 {
		t.Errorf("Upstream received %d requests, want 1", len(u.requests()))
	}
}
