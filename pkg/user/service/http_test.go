package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carbonquest/carbonquest/pkg/auth"
	"github.com/carbonquest/carbonquest/pkg/user"
	"github.com/carbonquest/carbonquest/pkg/userstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := userstore.NewMemoryStore()
	svc := NewService(store, []byte(testSecret), time.Hour, zap.NewNop())

	r := chi.NewRouter()
	RegisterRoutes(r, svc, auth.NewMiddleware(svc, []byte(testSecret)), zap.NewNop())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, url, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func registerAndLogin(t *testing.T, srv *httptest.Server, email, password string) (string, user.Response) {
	t.Helper()

	resp := postJSON(t, srv.URL+"/register", "", user.RegisterRequest{Email: email, Password: password})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/login", "", user.LoginRequest{Email: email, Password: password})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	login := decodeBody[user.LoginResponse](t, resp)
	if login.Token == "" {
		t.Fatal("login response has no token")
	}
	return login.Token, login.User
}

func TestHTTP_RegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)

	token, registered := registerAndLogin(t, srv, "alice@example.com", "correct-horse")

	resp := getJSON(t, srv.URL+"/me", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/me status = %d, want 200", resp.StatusCode)
	}
	me := decodeBody[user.Response](t, resp)
	if me.ID != registered.ID || me.Email != "alice@example.com" {
		t.Fatalf("/me = %+v, want registered account", me)
	}
}

func TestHTTP_RegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice@example.com", "correct-horse")

	resp := postJSON(t, srv.URL+"/register", "", user.RegisterRequest{
		Email:    "ALICE@example.com",
		Password: "other-password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}

func TestHTTP_LoginBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice@example.com", "correct-horse")

	resp := postJSON(t, srv.URL+"/login", "", user.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", resp.StatusCode)
	}
}

func TestHTTP_MeWithoutToken(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv.URL+"/me", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("/me status = %d, want 401", resp.StatusCode)
	}
}

func TestHTTP_LogoutInvalidatesToken(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerAndLogin(t, srv, "alice@example.com", "correct-horse")

	resp := postJSON(t, srv.URL+"/logout", token, struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", resp.StatusCode)
	}

	resp = getJSON(t, srv.URL+"/me", token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("/me after logout status = %d, want 401", resp.StatusCode)
	}
}

func TestHTTP_SecondLoginRevokesFirstToken(t *testing.T) {
	srv := newTestServer(t)
	firstToken, _ := registerAndLogin(t, srv, "alice@example.com", "correct-horse")

	resp := postJSON(t, srv.URL+"/register", "", user.RegisterRequest{Email: "bob@example.com", Password: "correct-horse"})
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/login", "", user.LoginRequest{Email: "bob@example.com", Password: "correct-horse"})
	login := decodeBody[user.LoginResponse](t, resp)

	// Only one session is active at a time, so alice's token is dead.
	resp = getJSON(t, srv.URL+"/me", firstToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("/me with revoked token status = %d, want 401", resp.StatusCode)
	}

	resp = getJSON(t, srv.URL+"/me", login.Token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/me with active token status = %d, want 200", resp.StatusCode)
	}
}

func TestHTTP_LinkWallet(t *testing.T) {
	srv := newTestServer(t)
	token, me := registerAndLogin(t, srv, "alice@example.com", "correct-horse")

	wallet := "0x1111111111111111111111111111111111111111"
	resp := postJSON(t, srv.URL+"/wallet/link", token, user.LinkWalletRequest{WalletAddress: wallet})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("link status = %d, want 200", resp.StatusCode)
	}
	linked := decodeBody[user.Response](t, resp)
	if linked.ID != me.ID || linked.WalletAddress != wallet {
		t.Fatalf("linked = %+v, want wallet on own account", linked)
	}
}

func TestHTTP_LinkWalletForOtherAccountForbidden(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerAndLogin(t, srv, "alice@example.com", "correct-horse")

	resp := postJSON(t, srv.URL+"/wallet/link", token, user.LinkWalletRequest{
		UserID:        "someone-else",
		WalletAddress: "0x1111111111111111111111111111111111111111",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("link status = %d, want 403", resp.StatusCode)
	}
}
