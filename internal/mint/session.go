// Package mint holds the minting session: the loaded candy machine, the
// wallet's eligibility, and transaction submission.
package mint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mvcm/internal/candymachine"
	"mvcm/internal/domain"
	"mvcm/internal/network"
	"mvcm/internal/notify"
	"mvcm/internal/observability"
	"mvcm/internal/solana"
	"mvcm/internal/storage"
)

// CandyMachineClient fetches candy machines and builds their mint instructions.
type CandyMachineClient interface {
	TokenSource
	Fetch(ctx context.Context, id string) (*domain.CandyMachine, error)
	FetchMetadata(ctx context.Context, mint string) (*candymachine.Metadata, error)
	MintInstructions(ctx context.Context, cm *domain.CandyMachine, payer, nftMint common.PublicKey, group string) ([]types.Instruction, error)
}

// Wallet is the connected signer.
type Wallet interface {
	Connected() bool
	PublicKey() (common.PublicKey, error)
	SignTransaction(msg types.Message, extra ...types.Account) (types.Transaction, error)
}

// Confirmer waits for a submitted signature.
type Confirmer interface {
	Confirm(ctx context.Context, signature string) error
}

// Backend is everything bound to one cluster.
type Backend struct {
	Network   network.Network
	Endpoints network.Endpoints
	RPC       solana.RPCClient
	Client    CandyMachineClient
	Balances  BalanceReader
	Confirmer Confirmer
}

// State is a point-in-time copy of the session for rendering.
type State struct {
	Network         string
	Identifier      string
	ValidationError string
	CandyMachine    *domain.CandyMachine
	Ticker          string
	Price           string
	PriceGuard      string
	Button          ButtonState
	Unhandled       []string
	Connected       bool
	Minting         bool
	LastMint        *domain.MintRecord
}

// Session is the minting state machine. It is safe for concurrent use.
type Session struct {
	wallet       Wallet
	notifier     notify.Notifier
	records      storage.MintRecordStore
	snapshots    storage.SnapshotStore
	computeUnits uint32
	group        string
	logger       *zap.Logger
	now          func() time.Time

	mu            sync.Mutex
	backend       Backend
	generation    uint64
	identifier    string
	validationErr string
	record        *domain.CandyMachine
	eval          *Evaluation
	minting       bool
	lastMint      *domain.MintRecord
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets where user notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithMintRecords records every mint attempt in store.
func WithMintRecords(store storage.MintRecordStore) Option {
	return func(s *Session) { s.records = store }
}

// WithSnapshots records a status snapshot on every refresh.
func WithSnapshots(store storage.SnapshotStore) Option {
	return func(s *Session) { s.snapshots = store }
}

// WithComputeUnits sets the compute budget of mint transactions.
func WithComputeUnits(units uint32) Option {
	return func(s *Session) {
		if units > 0 {
			s.computeUnits = units
		}
	}
}

// WithGroup selects a candy guard group.
func WithGroup(label string) Option {
	return func(s *Session) { s.group = label }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session bound to backend.
func NewSession(backend Backend, w Wallet, opts ...Option) *Session {
	s := &Session{
		backend:      backend,
		wallet:       w,
		notifier:     notify.Nop{},
		computeUnits: candymachine.DefaultComputeUnits,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rebind switches the session to another cluster. The loaded candy machine
// is discarded; the identifier is kept so it can be looked up again.
func (s *Session) Rebind(backend Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backend = backend
	s.generation++
	s.record = nil
	s.eval = nil
	s.logger.Info("session rebound", zap.String("network", backend.Network.String()))
}

// Network returns the cluster the session is bound to.
func (s *Session) Network() network.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Network
}

// SetIdentifier validates id and loads the candy machine it names. A changed
// or invalid identifier discards the previously loaded record.
func (s *Session) SetIdentifier(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	if id != s.identifier {
		s.generation++
		s.record = nil
		s.eval = nil
	}
	s.identifier = id

	switch {
	case id == "":
		s.validationErr = ErrIdentifierRequired.Error()
		s.mu.Unlock()
		return ErrIdentifierRequired
	case solana.ValidateAddress(id) != nil:
		s.validationErr = ErrInvalidPublicKey.Error()
		s.record = nil
		s.eval = nil
		s.mu.Unlock()
		return ErrInvalidPublicKey
	}
	s.validationErr = ""
	s.mu.Unlock()

	cm, err := s.refresh(ctx)
	if err != nil {
		s.notifyError(ctx, err)
		return err
	}
	if cm == nil {
		return nil
	}
	s.notifier.Notify(ctx, notify.Notification{
		Level: notify.LevelInfo,
		Title: "candy machine " + cm.Version.String(),
	})
	return nil
}

// Clear forgets the identifier and the loaded record.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.identifier = ""
	s.validationErr = ""
	s.record = nil
	s.eval = nil
}

// Refresh re-fetches the loaded identifier and re-evaluates the button.
func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.refresh(ctx)
	return err
}

// refresh returns a nil record without error when the identifier changed
// while the lookup was in flight.
func (s *Session) refresh(ctx context.Context) (*domain.CandyMachine, error) {
	s.mu.Lock()
	id, gen, b := s.identifier, s.generation, s.backend
	invalid := s.validationErr != ""
	s.mu.Unlock()

	if id == "" || invalid {
		return nil, ErrNoCandyMachine
	}

	cm, err := b.Client.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, candymachine.ErrLookup) {
			s.mu.Lock()
			if gen == s.generation {
				s.record = nil
				s.eval = nil
			}
			s.mu.Unlock()
		}
		return nil, err
	}

	owner := ""
	if s.wallet != nil && s.wallet.Connected() {
		if pk, err := s.wallet.PublicKey(); err == nil {
			owner = pk.ToBase58()
		}
	}
	eval, err := Evaluate(ctx, cm, s.group, owner, b.Client, b.Balances)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding stale candy machine", zap.String("id", id))
		return nil, nil
	}
	s.record = cm
	s.eval = eval
	s.mu.Unlock()

	observability.UpdateItems(cm.Address, cm.ItemsAvailable, cm.ItemsRemaining())
	s.saveSnapshot(ctx, b, cm, eval)
	return cm, nil
}

func (s *Session) saveSnapshot(ctx context.Context, b Backend, cm *domain.CandyMachine, eval *Evaluation) {
	if s.snapshots == nil {
		return
	}
	snap := &domain.StatusSnapshot{
		CandyMachine:   cm.Address,
		Network:        b.Network.String(),
		Version:        cm.Version,
		ItemsAvailable: cm.ItemsAvailable,
		ItemsRedeemed:  cm.ItemsRedeemed,
		ItemsRemaining: cm.ItemsRemaining(),
		Price:          eval.Payment.Amount,
		Ticker:         eval.Payment.Ticker,
		ObservedAt:     s.now().UnixMilli(),
	}
	if err := s.snapshots.Insert(ctx, snap); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Warn("failed to store status snapshot", zap.String("candy_machine", cm.Address), zap.Error(err))
	}
}

// State returns a copy of the session for rendering.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Network:         s.backend.Network.String(),
		Identifier:      s.identifier,
		ValidationError: s.validationErr,
		Ticker:          NativeTicker,
		Minting:         s.minting,
		Connected:       s.wallet != nil && s.wallet.Connected(),
	}
	if s.record != nil {
		cm := *s.record
		st.CandyMachine = &cm
	}
	if s.eval != nil {
		st.Ticker = s.eval.Payment.Ticker
		st.Price = s.eval.Payment.Display().String()
		st.PriceGuard = s.eval.Payment.Guard
		st.Button = s.eval.Button
		st.Unhandled = append([]string(nil), s.eval.Unhandled...)
	}
	if s.minting {
		st.Button = ButtonState{Label: LabelMinting, Disabled: true}
	}
	if s.lastMint != nil {
		rec := *s.lastMint
		st.LastMint = &rec
	}
	return st
}

// Mint submits a mint transaction for the loaded candy machine, waits for
// confirmation and refreshes the status once. The attempt is recorded
// whether or not it succeeds.
func (s *Session) Mint(ctx context.Context) (*domain.MintRecord, error) {
	s.mu.Lock()
	switch {
	case s.minting:
		s.mu.Unlock()
		return nil, ErrMintInProgress
	case s.record == nil:
		s.mu.Unlock()
		return nil, ErrNoCandyMachine
	case s.wallet == nil || !s.wallet.Connected():
		s.mu.Unlock()
		return nil, ErrWalletNotConnected
	case s.eval != nil && s.eval.Button.Disabled:
		label := s.eval.Button.Label
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotEligible, label)
	}
	cm, b := s.record, s.backend
	s.minting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.minting = false
		s.mu.Unlock()
	}()
	defer observability.MintStarted()()

	start := s.now()
	rec := &domain.MintRecord{
		ID:           uuid.NewString(),
		CandyMachine: cm.Address,
		Version:      cm.Version,
		Network:      b.Network.String(),
		Status:       domain.MintStatusFailed,
		AttemptedAt:  start.UnixMilli(),
	}

	nftMint := types.NewAccount()
	rec.NFTMint = nftMint.PublicKey.ToBase58()

	err := s.submit(ctx, b, cm, nftMint, rec)
	if err == nil {
		rec.Status = domain.MintStatusConfirmed
	} else {
		msg := err.Error()
		rec.Error = &msg
	}
	rec.CreatedAt = s.now().UnixMilli()
	observability.RecordMint(cm.Version.String(), string(rec.Status), s.now().Sub(start).Seconds())
	s.store(ctx, rec)

	if err != nil {
		s.logger.Error("mint failed", zap.String("candy_machine", cm.Address), zap.Error(err))
		s.notifyError(ctx, err)
		return rec, err
	}

	s.logger.Info("mint confirmed",
		zap.String("candy_machine", cm.Address),
		zap.String("nft_mint", rec.NFTMint),
		zap.String("signature", *rec.Signature))

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("status refresh after mint failed", zap.Error(err))
	}

	s.notifier.Notify(ctx, notify.Notification{
		Level:       notify.LevelSuccess,
		Title:       "Minted: " + s.nftName(ctx, b, rec.NFTMint),
		Description: solana.TruncateAddress(rec.NFTMint),
		Link:        b.Endpoints.ExplorerURL(network.ExplorerTx, *rec.Signature),
	})
	return rec, nil
}

func (s *Session) submit(ctx context.Context, b Backend, cm *domain.CandyMachine, nftMint types.Account, rec *domain.MintRecord) error {
	payer, err := s.wallet.PublicKey()
	if err != nil {
		return err
	}
	rec.Minter = payer.ToBase58()

	ixs, err := b.Client.MintInstructions(ctx, cm, payer, nftMint.PublicKey, s.group)
	if err != nil {
		return fmt.Errorf("build mint instructions: %w", err)
	}
	ixs = append([]types.Instruction{candymachine.ComputeUnitLimit(s.computeUnits)}, ixs...)

	blockhash, err := b.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("get blockhash: %w", err)
	}

	tx, err := s.wallet.SignTransaction(types.NewMessage(types.NewMessageParam{
		FeePayer:        payer,
		RecentBlockhash: blockhash.Blockhash,
		Instructions:    ixs,
	}), nftMint)
	if err != nil {
		return err
	}
	raw, err := tx.Serialize()
	if err != nil {
		return fmt.Errorf("serialize transaction: %w", err)
	}

	sig, err := b.RPC.SendTransaction(ctx, raw)
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}
	rec.Signature = &sig

	confirmStart := s.now()
	if err := b.Confirmer.Confirm(ctx, sig); err != nil {
		return fmt.Errorf("confirm %s: %w", sig, err)
	}
	observability.RecordConfirmation(s.now().Sub(confirmStart).Seconds())
	return nil
}

func (s *Session) store(ctx context.Context, rec *domain.MintRecord) {
	s.mu.Lock()
	cp := *rec
	s.lastMint = &cp
	s.mu.Unlock()

	if s.records == nil {
		return
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		s.logger.Warn("failed to store mint record", zap.String("id", rec.ID), zap.Error(err))
	}
}

func (s *Session) nftName(ctx context.Context, b Backend, mint string) string {
	md, err := b.Client.FetchMetadata(ctx, mint)
	if err != nil || md.Name == "" {
		return solana.TruncateAddress(mint)
	}
	return md.Name
}

func (s *Session) notifyError(ctx context.Context, err error) {
	title := "something went wrong."
	desc := err.Error()
	if errors.Is(err, candymachine.ErrLookup) {
		title = candymachine.ErrLookup.Error()
	}
	s.notifier.Notify(ctx, notify.Notification{
		Level:       notify.LevelError,
		Title:       title,
		Description: desc,
	})
}
