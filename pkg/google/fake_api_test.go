package google

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/calendar-bridge/internal/config"
	"github.com/stretchr/testify/require"
)

const testToken = "test-access-token"

// fakeCalendarAPI serves the token endpoint and the subset of the Calendar v3
// events API used by this service.
type fakeCalendarAPI struct {
	server *httptest.Server

	mu          sync.Mutex
	items       []map[string]any
	listQueries []map[string]string
	inserted    []map[string]any
	assertions  []string
	failWith    int
}

func newFakeCalendarAPI(t *testing.T) *fakeCalendarAPI {
	t.Helper()
	api := &fakeCalendarAPI{}

	r := mux.NewRouter()
	r.HandleFunc("/token", api.token).Methods(http.MethodPost)
	r.HandleFunc("/calendars/{calendarId}/events", api.listEvents).Methods(http.MethodGet)
	r.HandleFunc("/calendars/{calendarId}/events", api.insertEvent).Methods(http.MethodPost)

	api.server = httptest.NewServer(r)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeCalendarAPI) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	a.assertions = append(a.assertions, r.PostForm.Get("assertion"))
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": testToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (a *fakeCalendarAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		a.writeError(w, http.StatusUnauthorized, "Invalid Credentials")
		return false
	}
	if a.failWith != 0 {
		a.writeError(w, a.failWith, "Quota exceeded for quota metric 'Queries'")
		return false
	}
	return true
}

func (a *fakeCalendarAPI) listEvents(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}
	query := map[string]string{"calendarId": mux.Vars(r)["calendarId"]}
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}

	a.mu.Lock()
	a.listQueries = append(a.listQueries, query)
	items := a.items
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"kind":  "calendar#events",
		"items": items,
	})
}

func (a *fakeCalendarAPI) insertEvent(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body["calendarId"] = mux.Vars(r)["calendarId"]

	a.mu.Lock()
	a.inserted = append(a.inserted, body)
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       "evt123",
		"htmlLink": "https://www.google.com/calendar/event?eid=evt123",
		"summary":  body["summary"],
	})
}

func (a *fakeCalendarAPI) writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"errors": []map[string]any{
				{"domain": "usageLimits", "reason": "quotaExceeded", "message": message},
			},
		},
	})
}

// lastAssertionClaims decodes the claims of the most recent JWT assertion
// sent to the token endpoint.
func (a *fakeCalendarAPI) lastAssertionClaims(t *testing.T) map[string]any {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.assertions)
	parts := strings.Split(a.assertions[len(a.assertions)-1], ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))
	return claims
}

// serviceAccountJSON builds a service account key signed with a fresh RSA key
// whose token endpoint is tokenURL.
func serviceAccountJSON(t *testing.T, tokenURL string) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	privateKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	raw, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "test-project",
		"private_key_id": "key-1",
		"private_key":    string(privateKey),
		"client_email":   "bridge@test-project.iam.gserviceaccount.com",
		"client_id":      "1234567890",
		"token_uri":      tokenURL,
	})
	require.NoError(t, err)
	return raw
}

func setupService(t *testing.T, api *fakeCalendarAPI, cfg config.Google) *ServiceImpl {
	t.Helper()
	creds, err := ParseServiceAccount(serviceAccountJSON(t, api.server.URL+"/token"))
	require.NoError(t, err)
	cfg.Endpoint = api.server.URL + "/"
	if cfg.CalendarId == "" {
		cfg.CalendarId = "primary"
	}
	return NewService(creds, cfg)
}
