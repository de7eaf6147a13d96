package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mvcm/internal/domain"
	"mvcm/internal/mint"
	"mvcm/internal/notify"
)

func TestCard_LoadedMachine(t *testing.T) {
	st := mint.State{
		Network:    "devnet",
		Identifier: "CndyV3LdqHUfDLmE5naZjVN8rBZz4tqhdefbAnjHG3JR",
		CandyMachine: &domain.CandyMachine{
			Version:        domain.VersionV3,
			ItemsAvailable: 10,
			ItemsRedeemed:  4,
		},
		Ticker:    "SOL",
		Price:     "1.5",
		Button:    mint.ButtonState{Label: mint.LabelMint},
		Unhandled: []string{"nftGate"},
		Connected: true,
	}

	out := Card(st, "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")

	for _, want := range []string{"candy machine v3", "devnet", "9xQe..VFin", "Cndy..G3JR", "6", "10", "1.5 SOL", "[ mint ]", "nftGate"} {
		assert.Contains(t, out, want)
	}
}

func TestCard_ValidationError(t *testing.T) {
	out := Card(mint.State{Network: "devnet", Ticker: "SOL", ValidationError: "Invalid public key."}, "")

	assert.Contains(t, out, "Invalid public key.")
	assert.Contains(t, out, "not connected")
	assert.NotContains(t, out, "[ ")
}

func TestCard_LastMint(t *testing.T) {
	msg := "transaction failed"
	out := Card(mint.State{
		Network: "devnet",
		LastMint: &domain.MintRecord{
			NFTMint: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
			Status:  domain.MintStatusFailed,
			Error:   &msg,
		},
	}, "")

	assert.Contains(t, out, "failed: transaction failed")
}

func TestButton(t *testing.T) {
	assert.Contains(t, Button(mint.ButtonState{Label: mint.LabelSoldOut, Disabled: true}), "[ sold out ]")
}

func TestNotifications(t *testing.T) {
	out := Notifications([]notify.Notification{
		{Level: notify.LevelSuccess, Title: "Minted: #7", Description: "AbCd..WxYz", Link: "https://explorer.solana.com/tx/sig"},
		{Level: notify.LevelError, Title: "something went wrong."},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Minted: #7 - AbCd..WxYz")
	assert.Contains(t, lines[1], "https://explorer.solana.com/tx/sig")
	assert.Contains(t, lines[2], "something went wrong.")
}
