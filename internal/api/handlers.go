package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mvcm/internal/candymachine"
	"mvcm/internal/domain"
	"mvcm/internal/mint"
	"mvcm/internal/network"
	"mvcm/internal/storage"
)

const (
	defaultNotificationLimit = 20
	maxBodyBytes             = 1 << 16
)

var (
	errBadRequest      = errors.New("bad request")
	errHistoryDisabled = errors.New("mint history is not recorded")
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	n, endpoints, err := s.networks.Network(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNetworkResponse(n, endpoints))
}

func (s *Server) handleSetNetwork(w http.ResponseWriter, r *http.Request) {
	var req setNetworkRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeDomainError(w, err)
		return
	}
	n, err := network.Parse(req.Network)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.networks.SwitchNetwork(r.Context(), n); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.refresh(r.Context())

	n, endpoints, err := s.networks.Network(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNetworkResponse(n, endpoints))
}

func (s *Server) handleGetWallet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.walletState())
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.wallet.Disconnect(r.Context()); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.refresh(r.Context())
	writeJSON(w, http.StatusOK, s.walletState())
}

func (s *Server) walletState() walletResponse {
	resp := walletResponse{Connected: s.wallet.Connected()}
	if pk, err := s.wallet.PublicKey(); err == nil {
		resp.Address = s.wallet.Address()
		resp.PublicKey = pk.ToBase58()
	}
	return resp
}

func (s *Server) handleSetCandyMachine(w http.ResponseWriter, r *http.Request) {
	var req setCandyMachineRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.session.SetIdentifier(r.Context(), req.ID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(s.session.State()))
}

func (s *Server) handleClearCandyMachine(w http.ResponseWriter, _ *http.Request) {
	s.session.Clear()
	writeJSON(w, http.StatusOK, toStatusResponse(s.session.State()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		if err := s.session.Refresh(r.Context()); err != nil && !errors.Is(err, mint.ErrNoCandyMachine) {
			s.writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toStatusResponse(s.session.State()))
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.mintTimeout)
	defer cancel()

	rec, err := s.session.Mint(ctx)
	if err != nil {
		if rec == nil {
			s.writeDomainError(w, err)
			return
		}
		s.logger.Warn("mint failed", zap.String("id", rec.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  err.Error(),
			"record": toMintRecordResponse(rec),
		})
		return
	}
	writeJSON(w, http.StatusOK, toMintRecordResponse(rec))
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.feed.Recent(limit))
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeDomainError(w, errHistoryDisabled)
		return
	}

	q := r.URL.Query()
	var (
		records []*mintRecordResponse
		err     error
	)
	switch {
	case q.Get("candy_machine") != "":
		records, err = s.listHistory(r.Context(), s.history.GetByCandyMachine, q.Get("candy_machine"))
	case q.Get("minter") != "":
		records, err = s.listHistory(r.Context(), s.history.GetByMinter, q.Get("minter"))
	default:
		writeError(w, http.StatusBadRequest, "candy_machine or minter is required")
		return
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) listHistory(ctx context.Context, list func(context.Context, string) ([]*domain.MintRecord, error), key string) ([]*mintRecordResponse, error) {
	recs, err := list(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]*mintRecordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toMintRecordResponse(rec))
	}
	return out, nil
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeDomainError(w, errHistoryDisabled)
		return
	}
	rec, err := s.history.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMintRecordResponse(rec))
}

// refresh re-evaluates the loaded candy machine after a wallet or network
// change. Failures are already notified by the session.
func (s *Server) refresh(ctx context.Context) {
	if err := s.session.Refresh(ctx); err != nil && !errors.Is(err, mint.ErrNoCandyMachine) {
		s.logger.Warn("refresh failed", zap.Error(err))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mint.ErrIdentifierRequired),
		errors.Is(err, mint.ErrInvalidPublicKey),
		errors.Is(err, mint.ErrNoCandyMachine),
		errors.Is(err, mint.ErrWalletNotConnected),
		errors.Is(err, mint.ErrNotEligible),
		errors.Is(err, network.ErrUnknownNetwork),
		errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, candymachine.ErrLookup),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, errHistoryDisabled):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, mint.ErrMintInProgress):
		writeError(w, http.StatusConflict, err.Error())

	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
