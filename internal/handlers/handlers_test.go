package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/mailer"
	"github.com/joshua-takyi/gylounge/internal/middleware"
	"github.com/joshua-takyi/gylounge/internal/models"
	"github.com/joshua-takyi/gylounge/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func strPtr(s string) *string { return &s }

type testApp struct {
	repo    *models.MemoryRepo
	journal *models.MemoryJournal
	sender  *mailer.NoopSender
	router  *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := models.NewMemoryRepo()
	repo.PutLocation(models.Location{ID: "loc-1", Name: "Osu Lounge"})
	repo.PutEvent(models.Event{ID: "evt-1", Title: "Games Night", Date: "2026-05-01", LocationID: strPtr("loc-1")})
	repo.PutSlot(models.Slot{ID: "slot-1", EventID: strPtr("evt-1"), StartTime: "2026-05-01T18:00:00Z", EndTime: "2026-05-01T20:00:00Z", AvailableSpots: 1})
	repo.PutMember(models.Member{ID: "mem-1", Name: "Ama", Email: "ama@example.com", Phone: "024", Status: models.MemberStatusActive})
	repo.PutMember(models.Member{ID: "mem-2", Name: "Kofi", Email: "kofi@example.com", Phone: "020", Status: models.MemberStatusPending})

	journal := models.NewMemoryJournal()
	sender := mailer.NewNoopSender(nil)
	notifier := services.NewNotifier(sender, []string{"ops@gylounge.com"}, logger)
	bank, err := services.ParseBankTransferDetails("350", "GYLounge Ltd", "123", "GCB", "Pay with your reference.")
	require.NoError(t, err)

	ms := services.NewMembershipService(repo, notifier, bank, nil, logger)
	rs := services.NewReservationService(repo, journal, notifier, logger)
	cs := services.NewCatalogService(repo, logger)
	rc := services.NewReconciler(repo, journal, logger)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler(logger))
	r.POST("/booking", CreateBooking(rs, "/home"))
	r.POST("/membership/register", RegisterMember(ms, "/home"))
	r.GET("/api/v1/health", Health("gylounge-api"))
	r.GET("/api/v1/csrf", CSRFToken())
	r.GET("/api/v1/feedback", Feedback())
	r.GET("/api/v1/booking-target", BookingTarget(cs))
	r.GET("/api/v1/admin/slots/:id/bookings", ListSlotBookings(cs))
	r.POST("/api/v1/admin/reconcile", Reconcile(rc, 15*time.Minute))
	r.POST("/api/v1/admin/members/activate", ActivateMember(ms))

	return &testApp{repo: repo, journal: journal, sender: sender, router: r}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func bookingForm(email string) url.Values {
	return url.Values{
		"name":    {"Ama"},
		"email":   {email},
		"phone":   {"024"},
		"eventId": {"evt-1"},
		"slotId":  {"slot-1"},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStatusURL(t *testing.T) {
	assert.Equal(t, "/home?booking=success#booking", statusURL("/home", "booking", "success"))
	assert.Equal(t, "/home?register=saved&reference=GYL-MEM-0A1B2C3D#register",
		statusURL("/home", "register", "saved", [2]string{"reference", "GYL-MEM-0A1B2C3D"}))
	assert.Equal(t, "/home?register=error#register",
		statusURL("/home", "register", "error", [2]string{"reference", ""}))
	assert.Equal(t, "/?lang=en&booking=invalid#booking", statusURL("/?lang=en", "booking", "invalid"))
}

func TestCreateBookingRedirects(t *testing.T) {
	app := newTestApp(t)

	w := app.do(postForm("/booking", bookingForm("ama@example.com")))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/home?booking=success#booking", w.Header().Get("Location"))
	assert.Equal(t, 0, app.repo.SpotsLeft("slot-1"))

	w = app.do(postForm("/booking", bookingForm("ama@example.com")))
	assert.Equal(t, "/home?booking=slot-unavailable#booking", w.Header().Get("Location"))

	w = app.do(postForm("/booking", bookingForm("kofi@example.com")))
	assert.Equal(t, "/home?booking=membership-required#booking", w.Header().Get("Location"))

	w = app.do(postForm("/booking", url.Values{"name": {"Ama"}}))
	assert.Equal(t, "/home?booking=invalid#booking", w.Header().Get("Location"))
}

func TestCreateBookingJSON(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(
		`{"name":"Ama","email":"ama@example.com","phone":"024","eventId":"evt-1","slotId":"slot-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := app.do(req)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "success", data["status"])
	assert.NotEmpty(t, data["booking_id"])
	assert.NotEmpty(t, body["request_id"])

	req = postForm("/booking", bookingForm("ama@example.com"))
	req.Header.Set("Accept", "application/json")
	w = app.do(req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestCreateBookingJSONHidesEmailErrors(t *testing.T) {
	app := newTestApp(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := services.NewNotifier(mailer.NewNoopSender(nil), nil, logger)
	rs := services.NewReservationService(app.repo, app.journal, notifier, logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/booking", CreateBooking(rs, "/home"))

	req := postForm("/booking", bookingForm("ama@example.com"))
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), services.ErrNoOperatorRecipients.Error())
	assert.NotContains(t, w.Body.String(), `"error"`)

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, string(services.BookingEmailWarning), data["status"])
	notifications := data["notifications"].(map[string]any)
	assert.Equal(t, map[string]any{"ok": true}, notifications["confirmation"])
	assert.Equal(t, map[string]any{"ok": false}, notifications["notification"])
}

func TestRegisterMemberRedirects(t *testing.T) {
	app := newTestApp(t)

	w := app.do(postForm("/membership/register", url.Values{
		"name":  {"Esi"},
		"email": {"esi@example.com"},
		"phone": {"055"},
	}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Regexp(t, `^/home\?register=success&reference=GYL-MEM-[0-9A-F]{8}#register$`, w.Header().Get("Location"))
	assert.Len(t, app.sender.Sent(), 1)

	w = app.do(postForm("/membership/register", url.Values{"name": {"Ama"}, "email": {"ama@example.com"}, "phone": {"024"}}))
	assert.Equal(t, "/home?register=already-active#register", w.Header().Get("Location"))

	w = app.do(postForm("/membership/register", url.Values{"name": {"Ama"}}))
	assert.Equal(t, "/home?register=invalid#register", w.Header().Get("Location"))
}

func TestActivateMember(t *testing.T) {
	app := newTestApp(t)

	activate := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/members/activate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return app.do(req)
	}

	assert.Equal(t, http.StatusBadRequest, activate(`{}`).Code)
	assert.Equal(t, http.StatusNotFound, activate(`{"email":"nobody@example.com"}`).Code)
	assert.Equal(t, http.StatusConflict, activate(`{"email":"ama@example.com"}`).Code)

	w := activate(`{"email":"kofi@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode(t, w)["data"].(map[string]any)["status"])
}

func TestBookingTargetAndFeedback(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/booking-target", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "slot-1", data["slot_id"])
	assert.Equal(t, "18:00 - 20:00", data["time_label"])
	assert.Equal(t, "Osu Lounge", data["location_name"])

	app.do(postForm("/booking", bookingForm("ama@example.com")))
	w = app.do(httptest.NewRequest(http.MethodGet, "/api/v1/booking-target", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/v1/feedback?booking=slot-unavailable&register=saved&reference=GYL-MEM-0A1B2C3D", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data = decode(t, w)["data"].(map[string]any)
	booking := data["booking"].(map[string]any)
	assert.Equal(t, "error", booking["tone"])
	register := data["register"].(map[string]any)
	assert.Contains(t, register["message"], "GYL-MEM-0A1B2C3D")
}

func TestAdminEndpoints(t *testing.T) {
	app := newTestApp(t)
	app.do(postForm("/booking", bookingForm("ama@example.com")))

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/slots/slot-1/bookings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = app.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/reconcile?older_than=nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/reconcile?older_than=1m&repair=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	report := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 0, report["checked"])
}

func TestCSRFTokenDisabled(t *testing.T) {
	app := newTestApp(t)
	w := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/csrf", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	w := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gylounge-api", decode(t, w)["service"])
}
