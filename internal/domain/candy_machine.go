package domain

// CandyMachine is the decoded state of a candy machine account.
// Exactly one of Price (V2) or Guards (V3) is meaningful, depending on Version.
type CandyMachine struct {
	Version        Version
	Address        string // candy machine account
	Authority      string
	MintAuthority  string // candy guard address for V3, authority for V2
	CollectionMint string // V3 only
	Symbol         string
	SellerFeeBps   uint16
	TokenStandard  uint8 // V3 only: 0 NonFungible, 4 ProgrammableNonFungible

	ItemsAvailable uint64
	ItemsRedeemed  uint64

	// V2 pricing
	Price       uint64  // lamports, or raw token amount when TokenMint is set
	TokenMint   *string // SPL token the V2 price is denominated in (nullable)
	Wallet      string  // V2 treasury
	GoLiveDate  *int64  // unix seconds (nullable)
	AccountSize int     // raw account data length

	// V3 guards
	CandyGuard *CandyGuard
}

// ItemsRemaining returns items left to mint.
func (cm *CandyMachine) ItemsRemaining() uint64 {
	if cm.ItemsRedeemed >= cm.ItemsAvailable {
		return 0
	}
	return cm.ItemsAvailable - cm.ItemsRedeemed
}

// IsV3 reports whether the record uses the newer schema.
func (cm *CandyMachine) IsV3() bool {
	return cm.Version == VersionV3
}

// CandyGuard wraps a V3 candy machine's mint authority.
type CandyGuard struct {
	Address   string
	Base      string
	Authority string
	Default   GuardSet
	Groups    []GuardGroup
}

// GuardGroup is a labelled guard set (label max 6 bytes).
type GuardGroup struct {
	Label  string
	Guards GuardSet
}

// GuardSet holds the guards this app understands. Enabled lists the names of
// every enabled guard, including ones that are not decoded here.
type GuardSet struct {
	SolPayment   *SolPaymentGuard
	TokenPayment *TokenPaymentGuard
	TokenBurn    *TokenBurnGuard
	Enabled      []string
}

// SolPaymentGuard charges lamports sent to Destination.
type SolPaymentGuard struct {
	Lamports    uint64
	Destination string
}

// TokenPaymentGuard charges Amount (raw units) of Mint sent to DestinationATA.
type TokenPaymentGuard struct {
	Amount         uint64
	Mint           string
	DestinationATA string
}

// TokenBurnGuard burns Amount (raw units) of Mint from the minter.
type TokenBurnGuard struct {
	Amount uint64
	Mint   string
}

// Unhandled returns enabled guard names that carry a payment or proof
// requirement this app does not evaluate.
func (gs GuardSet) Unhandled() []string {
	var out []string
	for _, name := range gs.Enabled {
		switch name {
		case "solPayment", "tokenPayment", "tokenBurn", "startDate", "endDate", "botTax":
			continue
		}
		out = append(out, name)
	}
	return out
}

// Guards returns the guard set that applies when minting with the given group
// label: the default set when label is empty, otherwise the default set with
// the group's guards layered on top. ok is false for an unknown label.
func (g *CandyGuard) Guards(label string) (gs GuardSet, ok bool) {
	if label == "" {
		return g.Default, true
	}
	for _, group := range g.Groups {
		if group.Label != label {
			continue
		}
		merged := g.Default
		if group.Guards.SolPayment != nil {
			merged.SolPayment = group.Guards.SolPayment
		}
		if group.Guards.TokenPayment != nil {
			merged.TokenPayment = group.Guards.TokenPayment
		}
		if group.Guards.TokenBurn != nil {
			merged.TokenBurn = group.Guards.TokenBurn
		}
		merged.Enabled = mergeNames(g.Default.Enabled, group.Guards.Enabled)
		return merged, true
	}
	return GuardSet{}, false
}

func mergeNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
