package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stbcloud/smarthome-auth/auth"
	"github.com/stbcloud/smarthome-auth/clients"
	"github.com/stbcloud/smarthome-auth/gate"
	"github.com/stbcloud/smarthome-auth/internal/config"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/server"
	"github.com/stbcloud/smarthome-auth/server/loginsession"
	"github.com/stbcloud/smarthome-auth/skill"
	"github.com/stbcloud/smarthome-auth/store/inmemory"
	"github.com/stbcloud/smarthome-auth/token"
)

const redirectURI = "https://client.example/cb"

type publishCall struct {
	address string
	payload string
	qos     byte
}

type fakePublisher struct {
	calls []publishCall
}

func (p *fakePublisher) Publish(_ context.Context, address, payload string, qos byte) error {
	p.calls = append(p.calls, publishCall{address: address, payload: payload, qos: qos})
	return nil
}

type serverFixture struct {
	ts        *httptest.Server
	client    *http.Client
	publisher *fakePublisher
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	store := inmemory.New()

	hash, err := resources.HashPassword("pw1")
	require.NoError(t, err)
	require.NoError(t, store.Resources().Upsert(&resources.Resource{
		Username:        "alice",
		PasswordHash:    hash,
		DeviceIDs:       []string{"1", "2"},
		DeviceAddresses: []string{"home/alice/stb1", "home/alice/stb2"},
	}))

	tokens := token.NewManager(store.Tokens(), time.Hour)

	authService, err := auth.NewAuthorizationService(auth.Repos{
		Clients:   store.Clients(),
		Resources: store.Resources(),
		Grants:    store.Grants(),
	}, tokens)
	require.NoError(t, err)

	registry, err := clients.NewRegistry(store.Clients(), redirectURI, "email")
	require.NoError(t, err)

	publisher := &fakePublisher{}
	deviceGate, err := gate.New(tokens, store.Resources(), publisher)
	require.NoError(t, err)

	dispatcher, err := skill.NewDispatcher(tokens, store.Resources(), deviceGate)
	require.NoError(t, err)

	srv, err := server.New(config.Config{Env: "TEST"}, authService, registry, deviceGate, dispatcher, loginsession.NewInMemoryRepo())
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &serverFixture{
		ts: ts,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		publisher: publisher,
	}
}

func (f *serverFixture) registerClient(t *testing.T, displayName string) (string, string) {
	t.Helper()
	resp, err := f.client.Post(f.ts.URL+"/clients", "application/json",
		strings.NewReader(`{"display_name": "`+displayName+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var credentials struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&credentials))
	require.NotEmpty(t, credentials.ClientID)
	require.NotEmpty(t, credentials.ClientSecret)
	return credentials.ClientID, credentials.ClientSecret
}

func authorizeQuery(clientID string) url.Values {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", "email")
	q.Set("state", "xyz")
	return q
}

func (f *serverFixture) login(t *testing.T, clientID, username, password string) *http.Response {
	t.Helper()
	form := authorizeQuery(clientID)
	form.Set("username", username)
	form.Set("password", password)
	resp, err := f.client.PostForm(f.ts.URL+"/login", form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (f *serverFixture) approve(t *testing.T, clientID string) (code, state string) {
	t.Helper()
	form := authorizeQuery(clientID)
	form.Set("confirm", "yes")
	resp, err := f.client.PostForm(f.ts.URL+"/authorize", form)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(location.String(), redirectURI))
	return location.Query().Get("code"), location.Query().Get("state")
}

func (f *serverFixture) exchange(t *testing.T, clientID, code string) (*http.Response, map[string]string) {
	t.Helper()
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", clientID)
	form.Set("code", code)
	resp, err := f.client.PostForm(f.ts.URL+"/token", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp, payload
}

func TestAuthorizationCodeFlowEndToEnd(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")

	// Without a session the authorize endpoint sends the browser to login
	// with the original parameters intact.
	resp, err := f.client.Get(f.ts.URL + "/authorize?" + authorizeQuery(clientID).Encode())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/login?"))
	require.Contains(t, location, "client_id="+clientID)
	require.Contains(t, location, "state=xyz")

	// Login establishes the session and bounces back to authorize.
	resp = f.login(t, clientID, "alice", "pw1")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/authorize?"))

	// With a session the authorize endpoint renders the consent page.
	resp, err = f.client.Get(f.ts.URL + "/authorize?" + authorizeQuery(clientID).Encode())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	// Approval redirects to the client with code and echoed state.
	code, state := f.approve(t, clientID)
	require.NotEmpty(t, code)
	require.Equal(t, "xyz", state)

	// The code buys a token pair.
	resp2, payload := f.exchange(t, clientID, code)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Equal(t, "bearer", payload["token_type"])
	require.NotEmpty(t, payload["access_token"])
	require.NotEmpty(t, payload["refresh_token"])

	// The access token gates a device command that lands on the device's
	// bus address.
	q := url.Values{}
	q.Set("access_token", payload["access_token"])
	q.Set("device_id", "1")
	q.Set("command", "volume_up")
	q.Set("value", "2")
	resp, err = f.client.Get(f.ts.URL + "/api?" + q.Encode())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, f.publisher.calls, 1)
	require.Equal(t, "home/alice/stb1", f.publisher.calls[0].address)
	require.Equal(t, "volume_up2", f.publisher.calls[0].payload)
	require.Equal(t, byte(1), f.publisher.calls[0].qos)
}

func TestLoginFailureStatuses(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")

	resp := f.login(t, clientID, "ghost", "pw1")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.login(t, clientID, "alice", "wrong")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthorizeUnknownClientRedirectsWithError(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")

	resp := f.login(t, clientID, "alice", "pw1")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	q := authorizeQuery("ghost")
	resp2, err := f.client.Get(f.ts.URL + "/authorize?" + q.Encode())
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusFound, resp2.StatusCode)
	require.Equal(t, redirectURI+"?error=unknown_client", resp2.Header.Get("Location"))
}

func TestConsentDenialIssuesNoCode(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")
	f.login(t, clientID, "alice", "pw1")

	form := authorizeQuery(clientID)
	form.Set("confirm", "no")
	resp, err := f.client.PostForm(f.ts.URL+"/authorize", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestConsentWithoutSession(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")

	form := authorizeQuery(clientID)
	form.Set("confirm", "yes")
	resp, err := f.client.PostForm(f.ts.URL+"/authorize", form)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenEndpointRejectsReusedCode(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")
	f.login(t, clientID, "alice", "pw1")
	code, _ := f.approve(t, clientID)

	resp, _ := f.exchange(t, clientID, code)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload := f.exchange(t, clientID, code)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_grant", payload["error"])
}

func TestTokenEndpointRejectsUnknownClient(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")
	f.login(t, clientID, "alice", "pw1")
	code, _ := f.approve(t, clientID)

	resp, payload := f.exchange(t, "ghost", code)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "unknown_client", payload["error"])
}

func TestAPIRejectsInvalidToken(t *testing.T) {
	f := newServerFixture(t)

	q := url.Values{}
	q.Set("access_token", "bogus")
	q.Set("device_id", "1")
	q.Set("command", "volume_up")
	resp, err := f.client.Get(f.ts.URL + "/api?" + q.Encode())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, f.publisher.calls)
}

func TestAPIUnknownDevice(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")
	f.login(t, clientID, "alice", "pw1")
	code, _ := f.approve(t, clientID)
	_, payload := f.exchange(t, clientID, code)

	q := url.Values{}
	q.Set("access_token", payload["access_token"])
	q.Set("device_id", "99")
	q.Set("command", "volume_up")
	resp, err := f.client.Get(f.ts.URL + "/api?" + q.Encode())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Empty(t, f.publisher.calls)
}

func TestSkillEndpointDiscovery(t *testing.T) {
	f := newServerFixture(t)
	clientID, _ := f.registerClient(t, "demo")
	f.login(t, clientID, "alice", "pw1")
	code, _ := f.approve(t, clientID)
	_, tokenPayload := f.exchange(t, clientID, code)

	envelope := `{
		"directive": {
			"header": {"namespace": "Alexa.Discovery", "name": "Discover", "payloadVersion": "3"},
			"payload": {"scope": {"type": "BearerToken", "token": "` + tokenPayload["access_token"] + `"}}
		}
	}`
	resp, err := f.client.Post(f.ts.URL+"/skill", "application/json", strings.NewReader(envelope))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	event, ok := response["event"].(map[string]any)
	require.True(t, ok)
	payload, ok := event["payload"].(map[string]any)
	require.True(t, ok)
	endpoints, ok := payload["endpoints"].([]any)
	require.True(t, ok)
	require.Len(t, endpoints, 2)
}
