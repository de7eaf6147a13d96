package api

import (
	"time"

	"mvcm/internal/domain"
	"mvcm/internal/mint"
	"mvcm/internal/network"
)

type candyMachineResponse struct {
	Version        string   `json:"version"`
	Address        string   `json:"address"`
	Authority      string   `json:"authority"`
	MintAuthority  string   `json:"mint_authority"`
	CollectionMint string   `json:"collection_mint,omitempty"`
	Symbol         string   `json:"symbol,omitempty"`
	ItemsAvailable uint64   `json:"items_available"`
	ItemsRedeemed  uint64   `json:"items_redeemed"`
	ItemsRemaining uint64   `json:"items_remaining"`
	GoLiveDate     *int64   `json:"go_live_date,omitempty"`
	CandyGuard     string   `json:"candy_guard,omitempty"`
	Guards         []string `json:"guards,omitempty"`
	Groups         []string `json:"groups,omitempty"`
}

func toCandyMachineResponse(cm *domain.CandyMachine) *candyMachineResponse {
	if cm == nil {
		return nil
	}
	resp := &candyMachineResponse{
		Version:        cm.Version.String(),
		Address:        cm.Address,
		Authority:      cm.Authority,
		MintAuthority:  cm.MintAuthority,
		CollectionMint: cm.CollectionMint,
		Symbol:         cm.Symbol,
		ItemsAvailable: cm.ItemsAvailable,
		ItemsRedeemed:  cm.ItemsRedeemed,
		ItemsRemaining: cm.ItemsRemaining(),
		GoLiveDate:     cm.GoLiveDate,
	}
	if g := cm.CandyGuard; g != nil {
		resp.CandyGuard = g.Address
		resp.Guards = g.Default.Enabled
		for _, group := range g.Groups {
			resp.Groups = append(resp.Groups, group.Label)
		}
	}
	return resp
}

type mintRecordResponse struct {
	ID           string    `json:"id"`
	CandyMachine string    `json:"candy_machine"`
	Version      string    `json:"version"`
	Network      string    `json:"network"`
	Minter       string    `json:"minter"`
	NFTMint      string    `json:"nft_mint"`
	Signature    string    `json:"signature,omitempty"`
	Explorer     string    `json:"explorer,omitempty"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	AttemptedAt  time.Time `json:"attempted_at"`
}

func toMintRecordResponse(r *domain.MintRecord) *mintRecordResponse {
	if r == nil {
		return nil
	}
	resp := &mintRecordResponse{
		ID:           r.ID,
		CandyMachine: r.CandyMachine,
		Version:      r.Version.String(),
		Network:      r.Network,
		Minter:       r.Minter,
		NFTMint:      r.NFTMint,
		Status:       string(r.Status),
		AttemptedAt:  time.UnixMilli(r.AttemptedAt).UTC(),
	}
	if r.Signature != nil {
		resp.Signature = *r.Signature
		if n, err := network.Parse(r.Network); err == nil {
			resp.Explorer = n.Endpoints().ExplorerURL(network.ExplorerTx, *r.Signature)
		}
	}
	if r.Error != nil {
		resp.Error = *r.Error
	}
	return resp
}

type statusResponse struct {
	Network         string                `json:"network"`
	Identifier      string                `json:"identifier"`
	ValidationError string                `json:"validation_error,omitempty"`
	CandyMachine    *candyMachineResponse `json:"candy_machine,omitempty"`
	Ticker          string                `json:"ticker"`
	Price           string                `json:"price"`
	PriceGuard      string                `json:"price_guard,omitempty"`
	Button          mint.ButtonState      `json:"button"`
	Unhandled       []string              `json:"unhandled_guards,omitempty"`
	Connected       bool                  `json:"wallet_connected"`
	Minting         bool                  `json:"minting"`
	LastMint        *mintRecordResponse   `json:"last_mint,omitempty"`
}

func toStatusResponse(st mint.State) statusResponse {
	return statusResponse{
		Network:         st.Network,
		Identifier:      st.Identifier,
		ValidationError: st.ValidationError,
		CandyMachine:    toCandyMachineResponse(st.CandyMachine),
		Ticker:          st.Ticker,
		Price:           st.Price,
		PriceGuard:      st.PriceGuard,
		Button:          st.Button,
		Unhandled:       st.Unhandled,
		Connected:       st.Connected,
		Minting:         st.Minting,
		LastMint:        toMintRecordResponse(st.LastMint),
	}
}

type networkResponse struct {
	Network           string   `json:"network"`
	RPC               string   `json:"rpc"`
	WS                string   `json:"ws"`
	BundlrAddress     string   `json:"bundlr_address"`
	BundlrProviderURL string   `json:"bundlr_provider_url"`
	Available         []string `json:"available"`
}

func toNetworkResponse(n network.Network, e network.Endpoints) networkResponse {
	resp := networkResponse{
		Network:           n.String(),
		RPC:               e.RPC,
		WS:                e.WS,
		BundlrAddress:     e.BundlrAddress,
		BundlrProviderURL: e.BundlrProviderURL,
	}
	for _, a := range network.All() {
		resp.Available = append(resp.Available, a.String())
	}
	return resp
}

type walletResponse struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
	PublicKey string `json:"public_key,omitempty"`
}

type setNetworkRequest struct {
	Network string `json:"network"`
}

type setCandyMachineRequest struct {
	ID string `json:"id"`
}
