package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server *Server
	ts     *httptest.Server
	token  string
	salonA models.Salon
	salonB models.Salon
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := New(Options{})
	userID, err := server.AddUser("Demo Operator", "demo@krema.app", "password")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	salonA := server.AddSalon(userID, models.Salon{Name: "Krema Mitte"}, "owner")
	salonB := server.AddSalon(userID, models.Salon{Name: "Krema Kreuzberg"}, "manager")

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	f := &fixture{server: server, ts: ts, salonA: salonA, salonB: salonB}
	f.token = f.login(t, "demo@krema.app", "password")
	return f
}

func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := f.do(t, http.MethodPost, "/auth/login", "", 0, gin.H{
		"email": email, "password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login returned %d: %s", status, body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
		t.Fatalf("expected a token, got %s (err=%v)", body, err)
	}
	return resp.Token
}

func (f *fixture) do(t *testing.T, method, path, token string, salonID int64, payload any) (int, []byte) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.ts.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if salonID != 0 {
		req.Header.Set("X-Salon-Id", strconv.FormatInt(salonID, 10))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp.StatusCode, buf.Bytes()
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, http.MethodPost, "/auth/login", "", 0, gin.H{
		"email": "demo@krema.app", "password": "nope",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	var resp struct {
		Message string `json:"message"`
	}
	json.Unmarshal(body, &resp)
	if resp.Message != "Invalid credentials" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	f.login(t, "  Demo@Krema.App  ", "password")
}

func TestMeReturnsPivotShape(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, http.MethodGet, "/auth/me", f.token, 0, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var resp struct {
		User   models.User `json:"user"`
		Salons []struct {
			ID    int64        `json:"id"`
			Role  string       `json:"role"`
			Salon models.Salon `json:"salon"`
		} `json:"salons"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Email != "demo@krema.app" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if len(resp.Salons) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(resp.Salons))
	}
	first := resp.Salons[0]
	if first.Role != "owner" || first.Salon.ID != f.salonA.ID {
		t.Fatalf("unexpected membership %+v", first)
	}
	if first.ID == first.Salon.ID {
		t.Fatal("pivot id must differ from the salon id")
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	f := newFixture(t)
	for _, token := range []string{"", "garbage", f.token + "tampered"} {
		status, _ := f.do(t, http.MethodGet, "/auth/me", token, 0, nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, status)
		}
	}
}

func TestScopedRoutesRequireSalonHeader(t *testing.T) {
	f := newFixture(t)
	status, _ := f.do(t, http.MethodGet, "/catalog/services", f.token, 0, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without X-Salon-Id, got %d", status)
	}
}

func TestScopedRoutesRejectForeignSalon(t *testing.T) {
	f := newFixture(t)
	status, _ := f.do(t, http.MethodGet, "/catalog/services", f.token, 999999, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for a foreign salon, got %d", status)
	}
}

func TestCatalogIsolationBetweenSalons(t *testing.T) {
	f := newFixture(t)
	f.server.AddService(f.salonA.ID, models.Service{Name: "Haircut", IsActive: true})
	f.server.AddService(f.salonB.ID, models.Service{Name: "Beard Trim", IsActive: true})

	var resp struct {
		Data []models.Service `json:"data"`
	}
	status, body := f.do(t, http.MethodGet, "/catalog/services", f.token, f.salonA.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode flat envelope: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Name != "Haircut" {
		t.Fatalf("salon A must only see its own catalog, got %+v", resp.Data)
	}
}

func TestCreateServiceValidation(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, http.MethodPost, "/catalog/services", f.token, f.salonA.ID, gin.H{
		"price": 100,
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	var resp struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message == "" || len(resp.Errors["name"]) == 0 {
		t.Fatalf("expected Laravel-style validation payload, got %s", body)
	}
}

func TestServiceLifecycle(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/catalog/services", f.token, f.salonA.ID, gin.H{
		"name": "Hot Towel Shave", "price": 2500, "duration_min": 25,
	})
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", status, body)
	}
	var created struct {
		Data models.Service `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.ID == 0 || !created.Data.IsActive {
		t.Fatalf("expected id assigned and active by default, got %+v", created.Data)
	}

	id := strconv.FormatInt(created.Data.ID, 10)
	status, body = f.do(t, http.MethodPatch, "/catalog/services/"+id, f.token, f.salonA.ID, gin.H{
		"price": 2800,
	})
	if status != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", status, body)
	}
	var updated struct {
		Data models.Service `json:"data"`
	}
	json.Unmarshal(body, &updated)
	if updated.Data.Price != 2800 || updated.Data.Name != "Hot Towel Shave" {
		t.Fatalf("partial update must only touch submitted fields, got %+v", updated.Data)
	}

	status, _ = f.do(t, http.MethodDelete, "/catalog/services/"+id, f.token, f.salonA.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", status)
	}
	status, _ = f.do(t, http.MethodDelete, "/catalog/services/"+id, f.token, f.salonA.ID, nil)
	if status != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", status)
	}
}

func TestAppointmentsNestedEnvelopeAndFilters(t *testing.T) {
	f := newFixture(t)
	staff := f.server.AddStaff(f.salonA.ID, models.Staff{Name: "Alex", IsActive: true})
	base := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	f.server.AddAppointment(f.salonA.ID, models.Appointment{
		CustomerName: "Maria", Status: models.StatusConfirmed, StaffID: &staff.ID,
		StartAt: base, EndAt: base.Add(30 * time.Minute),
	})
	f.server.AddAppointment(f.salonA.ID, models.Appointment{
		CustomerName: "Jonas", Status: models.StatusPending,
		StartAt: base.Add(48 * time.Hour), EndAt: base.Add(49 * time.Hour),
	})

	var resp struct {
		Data struct {
			Data        []models.Appointment `json:"data"`
			CurrentPage int                  `json:"current_page"`
			Total       int                  `json:"total"`
		} `json:"data"`
	}

	status, body := f.do(t, http.MethodGet, "/appointments", f.token, f.salonA.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode nested envelope: %v", err)
	}
	if len(resp.Data.Data) != 2 || resp.Data.Total != 2 {
		t.Fatalf("expected 2 appointments, got %+v", resp.Data)
	}

	status, body = f.do(t, http.MethodGet, "/appointments?status=confirmed", f.token, f.salonA.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	json.Unmarshal(body, &resp)
	if len(resp.Data.Data) != 1 || resp.Data.Data[0].CustomerName != "Maria" {
		t.Fatalf("status filter failed, got %+v", resp.Data.Data)
	}

	to := base.Add(time.Hour).Format(time.RFC3339)
	status, body = f.do(t, http.MethodGet, "/appointments?to="+to, f.token, f.salonA.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	json.Unmarshal(body, &resp)
	if len(resp.Data.Data) != 1 || resp.Data.Data[0].CustomerName != "Maria" {
		t.Fatalf("time window filter failed, got %+v", resp.Data.Data)
	}
}

func TestCreateAppointmentRejectsBadTimeRange(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	status, body := f.do(t, http.MethodPost, "/appointments", f.token, f.salonA.ID, gin.H{
		"service_id":    1,
		"customer_name": "Maria",
		"start_at":      start.Format(time.RFC3339),
		"end_at":        start.Add(-time.Hour).Format(time.RFC3339),
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", status, body)
	}
	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	json.Unmarshal(body, &resp)
	if len(resp.Errors["start_at"]) == 0 {
		t.Fatalf("expected start_at field error, got %s", body)
	}
}

func TestSetAppointmentStatus(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	appt := f.server.AddAppointment(f.salonA.ID, models.Appointment{
		CustomerName: "Maria", StartAt: base, EndAt: base.Add(time.Hour),
	})
	id := strconv.FormatInt(appt.ID, 10)

	status, body := f.do(t, http.MethodPost, "/appointments/"+id+"/status", f.token, f.salonA.ID, gin.H{
		"status": "done",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var resp struct {
		Data models.Appointment `json:"data"`
	}
	json.Unmarshal(body, &resp)
	if resp.Data.Status != models.StatusDone {
		t.Fatalf("expected done, got %s", resp.Data.Status)
	}

	status, body = f.do(t, http.MethodPost, "/appointments/"+id+"/status", f.token, f.salonA.ID, gin.H{
		"status": "archived",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown status, got %d: %s", status, body)
	}
}

func TestCreateSalonGrantsOwnership(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, http.MethodPost, "/salons", f.token, 0, gin.H{
		"name": "Krema Neukölln",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	var resp struct {
		Data models.Salon `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID == 0 || resp.Data.Role != "owner" {
		t.Fatalf("expected owned salon, got %+v", resp.Data)
	}

	// The creator can immediately use the new salon as a scope.
	status, _ = f.do(t, http.MethodGet, "/catalog/services", f.token, resp.Data.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on the new salon, got %d", status)
	}
}
