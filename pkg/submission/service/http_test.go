package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carbonquest/carbonquest/pkg/auth"
	"github.com/carbonquest/carbonquest/pkg/images"
	"github.com/carbonquest/carbonquest/pkg/submission"
	"github.com/carbonquest/carbonquest/pkg/submissionstore"
	"github.com/carbonquest/carbonquest/pkg/user"
	userservice "github.com/carbonquest/carbonquest/pkg/user/service"
	"github.com/carbonquest/carbonquest/pkg/userstore"
)

const httpTestSecret = "http-test-secret"

func newHTTPTestServer(t *testing.T, minter Minter) *httptest.Server {
	t.Helper()

	identity := userservice.NewService(userstore.NewMemoryStore(), []byte(httpTestSecret), time.Hour, zap.NewNop())
	if err := identity.EnsureAdmin(context.Background(), "admin@carbonquest.com", "adminpassword"); err != nil {
		t.Fatalf("EnsureAdmin() failed: %v", err)
	}

	ledger := NewService(submissionstore.NewMemoryStore(), images.NewMemoryStore("/images/"), minter, "ipfs://carbonquest/", zap.NewNop())

	mw := auth.NewMiddleware(identity, []byte(httpTestSecret))
	r := chi.NewRouter()
	userservice.RegisterRoutes(r, identity, mw, zap.NewNop())
	RegisterRoutes(r, ledger, mw, zap.NewNop())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
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

func decodeResp[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// login establishes the single active session for the given account,
// registering it first if needed.
func login(t *testing.T, srv *httptest.Server, email, password string, registerFirst bool) string {
	t.Helper()

	if registerFirst {
		resp := doJSON(t, http.MethodPost, srv.URL+"/register", "", user.RegisterRequest{Email: email, Password: password})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("register status = %d, want 201", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/login", "", user.LoginRequest{Email: email, Password: password})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	return decodeResp[user.LoginResponse](t, resp).Token
}

func submitViaHTTP(t *testing.T, srv *httptest.Server, token string) submission.Response {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/submissions", token, submission.SubmitRequest{
		ActivityType: string(submission.ActivityTreePlanting),
		Title:        "Oak grove",
		Description:  "Planted ten oaks",
		Image:        testImage,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201", resp.StatusCode)
	}
	return decodeResp[submission.Response](t, resp)
}

func TestHTTP_SubmitAndListOwn(t *testing.T) {
	srv := newHTTPTestServer(t, nil)
	token := login(t, srv, "alice@example.com", "correct-horse", true)

	created := submitViaHTTP(t, srv, token)
	if created.Status != submission.StatusPending {
		t.Fatalf("status = %s, want pending", created.Status)
	}
	if created.UserID == "" {
		t.Fatal("submission not attributed to the caller")
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/submissions", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	subs := decodeResp[[]submission.Response](t, resp)
	if len(subs) != 1 || subs[0].ID != created.ID {
		t.Fatalf("list = %+v, want the created submission", subs)
	}
}

func TestHTTP_ListByConnectedWallet(t *testing.T) {
	srv := newHTTPTestServer(t, nil)

	const connected = "0x00000000000000000000000000000000deadbeef"

	bobToken := login(t, srv, "bob@example.com", "correct-horse", true)
	resp := doJSON(t, http.MethodPost, srv.URL+"/submissions", bobToken, submission.SubmitRequest{
		ActivityType:  string(submission.ActivityTreePlanting),
		Title:         "Oak grove",
		Description:   "Planted ten oaks",
		Image:         testImage,
		WalletAddress: connected,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201", resp.StatusCode)
	}
	created := decodeResp[submission.Response](t, resp)

	// Alice has no linked wallet; querying by the connected address in a
	// different case still finds the wallet's submissions.
	aliceToken := login(t, srv, "alice@example.com", "correct-horse", true)
	resp = doJSON(t, http.MethodGet, srv.URL+"/submissions?wallet_address=0x00000000000000000000000000000000DEADBEEF", aliceToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	subs := decodeResp[[]submission.Response](t, resp)
	if len(subs) != 1 || subs[0].ID != created.ID {
		t.Fatalf("list = %+v, want the wallet's submission", subs)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/submissions?wallet_address=not-an-address", aliceToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid wallet status = %d, want 400", resp.StatusCode)
	}
}

func TestHTTP_SubmitRequiresAuth(t *testing.T) {
	srv := newHTTPTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/submissions", "", submission.SubmitRequest{
		ActivityType: "tree-planting",
		Title:        "Oak grove",
		Description:  "Planted ten oaks",
		Image:        testImage,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("submit status = %d, want 401", resp.StatusCode)
	}
}

func TestHTTP_AdminEndpointsForbiddenForUsers(t *testing.T) {
	srv := newHTTPTestServer(t, nil)
	token := login(t, srv, "alice@example.com", "correct-horse", true)

	resp := doJSON(t, http.MethodGet, srv.URL+"/admin/submissions", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("admin list status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/admin/submissions/some-id/review", token, submission.ReviewRequest{Status: "approved"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("review status = %d, want 403", resp.StatusCode)
	}
}

func TestHTTP_AdminReviewFlow(t *testing.T) {
	minter := &fakeMinter{}
	srv := newHTTPTestServer(t, minter)

	userToken := login(t, srv, "alice@example.com", "correct-horse", true)
	created := submitViaHTTP(t, srv, userToken)

	// Attach a wallet so the approval has a mint recipient.
	resp := doJSON(t, http.MethodPost, srv.URL+"/wallet/link", userToken, user.LinkWalletRequest{WalletAddress: testWallet})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("wallet link status = %d, want 200", resp.StatusCode)
	}

	// Wallet was linked after the submission; re-submit one carrying it.
	resp = doJSON(t, http.MethodPost, srv.URL+"/submissions", userToken, submission.SubmitRequest{
		ActivityType:  string(submission.ActivityCleanEnergy),
		Title:         "Solar",
		Description:   "Installed panels",
		Image:         testImage,
		WalletAddress: testWallet,
	})
	withWallet := decodeResp[submission.Response](t, resp)

	adminToken := login(t, srv, "admin@carbonquest.com", "adminpassword", false)

	resp = doJSON(t, http.MethodGet, srv.URL+"/admin/submissions", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin list status = %d, want 200", resp.StatusCode)
	}
	all := decodeResp[[]submission.Response](t, resp)
	if len(all) != 2 {
		t.Fatalf("admin list has %d submissions, want 2", len(all))
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/admin/submissions/"+withWallet.ID+"/review", adminToken, submission.ReviewRequest{Status: "approved"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("review status = %d, want 200", resp.StatusCode)
	}
	reviewed := decodeResp[submission.Response](t, resp)
	if reviewed.Status != submission.StatusApproved || reviewed.TokenID != "7" {
		t.Fatalf("reviewed = %+v, want approved with token", reviewed)
	}
	if len(minter.calls) != 1 || minter.calls[0] != testWallet {
		t.Fatalf("mint calls = %v, want one to %s", minter.calls, testWallet)
	}

	// A second review of the same submission conflicts.
	resp = doJSON(t, http.MethodPost, srv.URL+"/admin/submissions/"+withWallet.ID+"/review", adminToken, submission.ReviewRequest{Status: "rejected"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("repeat review status = %d, want 409", resp.StatusCode)
	}

	// The created-first submission (reviewed by nobody) stays pending.
	resp = doJSON(t, http.MethodGet, srv.URL+"/submissions/"+created.ID+"/metadata", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metadata status = %d, want 200", resp.StatusCode)
	}
	meta := decodeResp[submission.NFTMetadata](t, resp)
	if meta.Name != "Oak grove" {
		t.Fatalf("metadata name = %q, want submission title", meta.Name)
	}
}

func TestHTTP_ReviewUnknownSubmissionIs404(t *testing.T) {
	srv := newHTTPTestServer(t, nil)
	adminToken := login(t, srv, "admin@carbonquest.com", "adminpassword", false)

	resp := doJSON(t, http.MethodPost, srv.URL+"/admin/submissions/no-such-id/review", adminToken, submission.ReviewRequest{Status: "approved"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("review status = %d, want 404", resp.StatusCode)
	}
}

func TestHTTP_MetadataUnknownSubmissionIs404(t *testing.T) {
	srv := newHTTPTestServer(t, nil)

	resp := doJSON(t, http.MethodGet, srv.URL+"/submissions/no-such-id/metadata", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("metadata status = %d, want 404", resp.StatusCode)
	}
}
