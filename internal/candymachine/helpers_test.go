package candymachine

import (
	"encoding/binary"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// accountWriter builds borsh-encoded account data for tests.
type accountWriter struct {
	buf []byte
}

func (w *accountWriter) raw(b []byte) *accountWriter {
	w.buf = append(w.buf, b...)
	return w
}

func (w *accountWriter) u8(v uint8) *accountWriter {
	w.buf = append(w.buf, v)
	return w
}

func (w *accountWriter) bool(v bool) *accountWriter {
	if v {
		return w.u8(1)
	}
	return w.u8(0)
}

func (w *accountWriter) u16(v uint16) *accountWriter {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *accountWriter) u32(v uint32) *accountWriter {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

func (w *accountWriter) u64(v uint64) *accountWriter {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *accountWriter) pubkey(pk common.PublicKey) *accountWriter {
	return w.raw(pk.Bytes())
}

func (w *accountWriter) string(s string) *accountWriter {
	return w.u32(uint32(len(s))).raw([]byte(s))
}

func (w *accountWriter) zeros(n int) *accountWriter {
	return w.raw(make([]byte, n))
}

func newKey() common.PublicKey {
	return types.NewAccount().PublicKey
}

type v3Fixture struct {
	authority, mintAuthority, collectionMint common.PublicKey
	redeemed, available                      uint64
	symbol                                   string
	tokenStandard                            uint8
}

func candyMachineV3Data(f v3Fixture) []byte {
	w := &accountWriter{}
	w.raw(candyMachineDiscriminator).
		u8(1).u8(f.tokenStandard).zeros(6).
		pubkey(f.authority).pubkey(f.mintAuthority).pubkey(f.collectionMint).
		u64(f.redeemed).
		u64(f.available).string(f.symbol).u16(500).u64(0).bool(true).
		u32(0). // creators
		u8(0).  // config line settings
		u8(0)   // hidden settings
	return w.buf
}

// guard is one enabled guard: its bit index and serialized body.
type guard struct {
	index int
	body  []byte
}

func guardSetData(guards ...guard) []byte {
	var features uint64
	for _, g := range guards {
		features |= 1 << uint(g.index)
	}
	w := (&accountWriter{}).u64(features)
	for _, g := range guards {
		w.raw(g.body)
	}
	return w.buf
}

func candyGuardData(base, authority common.PublicKey, defaults []byte, groups map[string][]byte, order ...string) []byte {
	w := &accountWriter{}
	w.raw(candyGuardDiscriminator).pubkey(base).u8(255).pubkey(authority).raw(defaults)
	w.u32(uint32(len(order)))
	for _, label := range order {
		padded := make([]byte, groupLabelSize)
		copy(padded, label)
		w.raw(padded).raw(groups[label])
	}
	return w.buf
}

func solPaymentBody(lamports uint64, dest common.PublicKey) []byte {
	return (&accountWriter{}).u64(lamports).pubkey(dest).buf
}

func tokenPaymentBody(amount uint64, mint, destATA common.PublicKey) []byte {
	return (&accountWriter{}).u64(amount).pubkey(mint).pubkey(destATA).buf
}

func tokenBurnBody(amount uint64, mint common.PublicKey) []byte {
	return (&accountWriter{}).u64(amount).pubkey(mint).buf
}

func metadataData(updateAuthority, mint common.PublicKey, name, symbol string) []byte {
	pad := func(s string, n int) string {
		return s + string(make([]byte, n-len(s)))
	}
	w := &accountWriter{}
	w.u8(4).pubkey(updateAuthority).pubkey(mint).
		string(pad(name, 32)).string(pad(symbol, 10)).string(pad("https://example.com/0.json", 200)).
		u16(500).zeros(64)
	return w.buf
}

func mintData(decimals uint8) []byte {
	data := make([]byte, MintAccountSize)
	data[mintDecimalsOffset] = decimals
	data[mintDecimalsOffset+1] = 1
	return data
}

func candyMachineV2Data(wallet common.PublicKey, price, redeemed, available uint64) []byte {
	w := &accountWriter{}
	w.raw(candyMachineDiscriminator).
		pubkey(newKey()).pubkey(wallet).
		u8(0).
		u64(redeemed).
		string("uuid01").u64(price).string("OLD").u16(0).
		u64(0).bool(false).bool(true).
		u8(0). // go live
		u8(0). // end settings
		u32(0).
		u8(0). // hidden settings
		u8(0). // whitelist
		u64(available).
		u8(0)
	return w.buf
}
