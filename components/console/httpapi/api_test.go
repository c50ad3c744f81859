package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/otp"
)

type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *inbox) deliver(_ context.Context, email, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.codes == nil {
		i.codes = map[string]string{}
	}
	i.codes[email] = code
	return nil
}

func (i *inbox) last(email string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[email]
}

type fixture struct {
	box     *inbox
	auth    *console.AuthFlow
	handler http.Handler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	service, err := console.NewService(console.Options{})
	require.NoError(t, err)
	box := &inbox{}
	auth := console.NewAuthFlow(console.AuthOptions{
		Issuer:        otp.NewMemoryIssuer(otp.WithHashCost(bcrypt.MinCost), otp.WithDelivery(box.deliver)),
		Cooldown:      -1,
		VerifyTimeout: time.Second,
	})
	t.Cleanup(auth.Shutdown)
	h := &Handlers{
		API:       NewCommandExecutor(service, auth, nil),
		Broadcast: auth.Broadcast(),
	}
	return fixture{box: box, auth: auth, handler: h.Routes("/admin")}
}

func (f fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandleList(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/admin/api/lists/users?filter.role=admin&sort=name", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[console.ListView](t, rec)
	assert.Equal(t, 5, view.Total)
	require.NotNil(t, view.Sort)
	assert.Equal(t, "name", view.Sort.Key)

	rec = f.do(t, http.MethodGet, "/admin/api/lists/users", nil)
	view = decode[console.ListView](t, rec)
	assert.Equal(t, 5, view.Total, "state persists for the viewer")

	rec = f.do(t, http.MethodDelete, "/admin/api/lists/users/state", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/admin/api/lists/users", nil)
	view = decode[console.ListView](t, rec)
	assert.Equal(t, 42, view.Total)
}

func TestHandleListUnknownScreen(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/admin/api/lists/orders", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleOverviewAndNavigation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/admin/api/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode[console.Overview](t, rec)
	assert.Len(t, overview.Cards, 4)

	rec = f.do(t, http.MethodGet, "/admin/api/navigation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]console.MenuItem](t, rec)
	assert.Len(t, items, 6)
}

func TestVerificationEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/api/otp/sessions", console.StartRequest{Email: "ada@example.com", Purpose: otp.PurposeVerifyEmail})
	require.Equal(t, http.StatusCreated, rec.Code)
	snap := decode[otp.Snapshot](t, rec)
	require.NotEmpty(t, snap.SessionID)
	base := "/admin/api/otp/sessions/" + snap.SessionID

	rec = f.do(t, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/edit", map[string]any{"action": "paste", "value": f.box.last("ada@example.com")})
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[otp.Snapshot](t, rec)
	assert.Equal(t, otp.StatusComplete, snap.Status)

	rec = f.do(t, http.MethodPost, base+"/submit?wait=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[otp.Snapshot](t, rec)
	assert.Equal(t, otp.StatusVerified, snap.Status)
	assert.Equal(t, "/auth/login", snap.Next)

	rec = f.do(t, http.MethodPost, base+"/resend", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/admin/api/otp/sessions", console.StartRequest{Email: "grace@example.com", Purpose: otp.PurposePasswordReset})
	require.Equal(t, http.StatusCreated, rec.Code)
	base = "/admin/api/otp/sessions/" + decode[otp.Snapshot](t, rec).SessionID
	rec = f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductEndpoints(t *testing.T) {
	f := newFixture(t)
	lamp := console.ProductInput{Name: "Desk Lamp", SKU: "LAMP-01", CategoryID: "cat-02", Price: 39.5, Stock: 12, Status: "active"}

	rec := f.do(t, http.MethodPost, "/admin/api/products", lamp)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[console.Product](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Home & Kitchen", created.Category)

	rec = f.do(t, http.MethodGet, "/admin/api/lists/products?search=desk+lamp", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[console.ListView](t, rec).Total)

	rec = f.do(t, http.MethodPost, "/admin/api/products", lamp)
	assert.Equal(t, http.StatusConflict, rec.Code)

	lamp.Price = -2
	rec = f.do(t, http.MethodPut, "/admin/api/products/"+created.ID, lamp)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	lamp.Price = 45
	rec = f.do(t, http.MethodPut, "/admin/api/products/"+created.ID, lamp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 45.0, decode[console.Product](t, rec).Price)

	rec = f.do(t, http.MethodDelete, "/admin/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/admin/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/admin/api/lists/products", nil)
	assert.Equal(t, 0, decode[console.ListView](t, rec).Total)
}

func TestProductEndpointsNotConfigured(t *testing.T) {
	h := &Handlers{API: &CommandExecutor{}}
	req := httptest.NewRequest(http.MethodDelete, "/admin/api/products/prd-001", nil)
	rec := httptest.NewRecorder()
	h.Routes("/admin").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHandleStartValidation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/admin/api/otp/sessions", console.StartRequest{Email: "nope", Purpose: otp.PurposeVerifyEmail})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/otp/sessions", strings.NewReader("{"))
	out := httptest.NewRecorder()
	f.handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestHandleEventsWebSocket(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.handler)
	defer server.Close()

	snap, err := f.auth.Start(context.Background(), console.StartRequest{Email: "ada@example.com", Purpose: otp.PurposeVerifyEmail})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/admin/api/otp/sessions/" + snap.SessionID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return f.auth.Broadcast().Subscribers(snap.SessionID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	session, err := f.auth.Session(snap.SessionID)
	require.NoError(t, err)
	_, err = session.TypeDigit(context.Background(), 0, "7")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event otp.SessionEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "type", event.Reason)
	assert.Equal(t, snap.SessionID, event.SessionID)
}

func TestHandleEventsUnknownSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/admin/api/otp/sessions/nope/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnconfiguredExecutor(t *testing.T) {
	h := &Handlers{API: &CommandExecutor{}}
	rec := httptest.NewRecorder()
	h.HandleOverview(rec, httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
