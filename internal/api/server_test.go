package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcm/internal/candymachine"
	"mvcm/internal/domain"
	"mvcm/internal/mint"
	"mvcm/internal/network"
	"mvcm/internal/notify"
	"mvcm/internal/storage"
	"mvcm/internal/storage/memory"
	"mvcm/internal/wallet"
)

const testCandyMachine = "HvKxBvQk2eYqX7ucbEhzSP1GsoSLm5vVxZ7k4zWbJJpw"

type fakeSession struct {
	mu        sync.Mutex
	state     mint.State
	setErr    error
	mintRec   *domain.MintRecord
	mintErr   error
	refreshes int
}

func (f *fakeSession) SetIdentifier(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Identifier = id
	if f.setErr != nil {
		f.state.CandyMachine = nil
		return f.setErr
	}
	f.state.CandyMachine = &domain.CandyMachine{
		Version:        domain.VersionV2,
		Address:        id,
		ItemsAvailable: 10,
		ItemsRedeemed:  4,
	}
	f.state.Button = mint.ButtonState{Label: mint.LabelMint}
	return nil
}

func (f *fakeSession) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = mint.State{Network: f.state.Network, Ticker: mint.NativeTicker}
}

func (f *fakeSession) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.state.CandyMachine == nil {
		return mint.ErrNoCandyMachine
	}
	return nil
}

func (f *fakeSession) State() mint.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) Mint(context.Context) (*domain.MintRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mintRec, f.mintErr
}

func (f *fakeSession) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

type fakeNetworks struct {
	mu      sync.Mutex
	current network.Network
}

func (f *fakeNetworks) Network(context.Context) (network.Network, network.Endpoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.current.Endpoints(), nil
}

func (f *fakeNetworks) SwitchNetwork(_ context.Context, n network.Network) error {
	if !n.IsValid() {
		return fmt.Errorf("%w: %q", network.ErrUnknownNetwork, n)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = n
	return nil
}

type fixture struct {
	session  *fakeSession
	networks *fakeNetworks
	wallet   *wallet.Session
	feed     *notify.Feed
	history  *memory.MintRecordStore
	server   *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	w := wallet.NewSession(memory.NewPreferenceStore(), nil)
	w.Connect(types.NewAccount())

	f := &fixture{
		session:  &fakeSession{state: mint.State{Network: "devnet", Ticker: mint.NativeTicker}},
		networks: &fakeNetworks{current: network.Devnet},
		wallet:   w,
		feed:     notify.NewFeed(nil),
		history:  memory.NewMintRecordStore(),
	}
	f.server = New(Options{
		Session:     f.session,
		Networks:    f.networks,
		Wallet:      f.wallet,
		Feed:        f.feed,
		History:     f.history,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mvcm_")
}

func TestNetwork_Get(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/network", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[networkResponse](t, rec)
	assert.Equal(t, "devnet", resp.Network)
	assert.Equal(t, "https://api.devnet.solana.com", resp.RPC)
	assert.Equal(t, []string{"localnet", "devnet", "mainnet-beta"}, resp.Available)
}

func TestNetwork_Set(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/network", `{"network":"localnet"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[networkResponse](t, rec)
	assert.Equal(t, "localnet", resp.Network)
	assert.Equal(t, "http://127.0.0.1:8899", resp.RPC)
	assert.Equal(t, 1, f.session.refreshCount())
}

func TestNetwork_SetRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown network", `{"network":"testnet"}`},
		{"malformed json", `{"network":`},
		{"unknown field", `{"cluster":"devnet"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := f.do(t, http.MethodPut, "/network", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, network.Devnet, f.networks.current)
		})
	}
}

func TestWallet_GetAndDisconnect(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/wallet", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[walletResponse](t, rec)
	assert.True(t, resp.Connected)
	assert.NotEmpty(t, resp.PublicKey)
	assert.Contains(t, resp.Address, "..")

	rec = f.do(t, http.MethodPost, "/wallet/disconnect", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[walletResponse](t, rec)
	assert.False(t, resp.Connected)
	assert.Empty(t, resp.PublicKey)
	assert.Equal(t, 1, f.session.refreshCount())
}

func TestCandyMachine_Set(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/candy-machine", `{"id":"`+testCandyMachine+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[statusResponse](t, rec)
	assert.Equal(t, testCandyMachine, resp.Identifier)
	require.NotNil(t, resp.CandyMachine)
	assert.Equal(t, "v2", resp.CandyMachine.Version)
	assert.Equal(t, uint64(6), resp.CandyMachine.ItemsRemaining)
	assert.Equal(t, mint.LabelMint, resp.Button.Label)
}

func TestCandyMachine_SetErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"required", mint.ErrIdentifierRequired, http.StatusBadRequest, "candy machine id is required."},
		{"invalid key", mint.ErrInvalidPublicKey, http.StatusBadRequest, "Invalid public key."},
		{"lookup", fmt.Errorf("%w (v3: a; v2: b)", candymachine.ErrLookup), http.StatusNotFound, "provided id is neither cm v2 or v3. (v3: a; v2: b)"},
		{"transport", errors.New("connection refused"), http.StatusInternalServerError, "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.session.setErr = tt.err

			rec := f.do(t, http.MethodPut, "/candy-machine", `{"id":"x"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
		})
	}
}

func TestCandyMachine_Clear(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/candy-machine", `{"id":"`+testCandyMachine+`"}`).Code)

	rec := f.do(t, http.MethodDelete, "/candy-machine", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[statusResponse](t, rec)
	assert.Empty(t, resp.Identifier)
	assert.Nil(t, resp.CandyMachine)
	assert.Equal(t, "SOL", resp.Ticker)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.session.refreshCount())

	rec = f.do(t, http.MethodGet, "/status?refresh=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.session.refreshCount())
	assert.Equal(t, "devnet", decode[statusResponse](t, rec).Network)
}

func TestMint(t *testing.T) {
	sig := "5stubSignature"
	f := newFixture(t)
	f.session.mintRec = &domain.MintRecord{
		ID:           "rec-1",
		CandyMachine: testCandyMachine,
		Version:      domain.VersionV3,
		Network:      "devnet",
		Signature:    &sig,
		Status:       domain.MintStatusConfirmed,
		AttemptedAt:  1_700_000_000_000,
	}

	rec := f.do(t, http.MethodPost, "/mint", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[mintRecordResponse](t, rec)
	assert.Equal(t, "rec-1", resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "https://explorer.solana.com/tx/5stubSignature?cluster=devnet", resp.Explorer)
}

func TestMint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"in progress", mint.ErrMintInProgress, http.StatusConflict},
		{"no candy machine", mint.ErrNoCandyMachine, http.StatusBadRequest},
		{"wallet", mint.ErrWalletNotConnected, http.StatusBadRequest},
		{"not eligible", fmt.Errorf("%w: sold out", mint.ErrNotEligible), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.session.mintErr = tt.err

			rec := f.do(t, http.MethodPost, "/mint", "")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestMint_SubmissionFailureReturnsRecord(t *testing.T) {
	msg := "blockhash not found"
	f := newFixture(t)
	f.session.mintErr = errors.New(msg)
	f.session.mintRec = &domain.MintRecord{ID: "rec-2", Status: domain.MintStatusFailed, Error: &msg}

	rec := f.do(t, http.MethodPost, "/mint", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Error  string             `json:"error"`
		Record mintRecordResponse `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, msg, resp.Error)
	assert.Equal(t, "rec-2", resp.Record.ID)
	assert.Equal(t, "failed", resp.Record.Status)
	assert.Equal(t, msg, resp.Record.Error)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.feed.Notify(ctx, notify.Notification{Level: notify.LevelInfo, Title: "first"})
	f.feed.Notify(ctx, notify.Notification{Level: notify.LevelError, Title: "second"})

	rec := f.do(t, http.MethodGet, "/notifications?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	items := decode[[]notify.Notification](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "second", items[0].Title)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/notifications?limit=abc", "").Code)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.history.Insert(ctx, &domain.MintRecord{
		ID:           "rec-1",
		CandyMachine: testCandyMachine,
		Version:      domain.VersionV2,
		Network:      "devnet",
		Minter:       "minter-1",
		Status:       domain.MintStatusConfirmed,
		AttemptedAt:  1,
		CreatedAt:    2,
	}))

	rec := f.do(t, http.MethodGet, "/history/rec-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "minter-1", decode[mintRecordResponse](t, rec).Minter)

	rec = f.do(t, http.MethodGet, "/history/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, storage.ErrNotFound.Error(), errorMessage(t, rec))

	rec = f.do(t, http.MethodGet, "/history?candy_machine="+testCandyMachine, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]mintRecordResponse](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/history?minter=nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]mintRecordResponse](t, rec))

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/history", "").Code)
}

func TestHistory_Disabled(t *testing.T) {
	f := newFixture(t)
	f.server = New(Options{Session: f.session, Networks: f.networks, Wallet: f.wallet, Feed: f.feed})

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/history/rec-1", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/candy-machine", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
