package domain

// StatusSnapshot is one observation of a candy machine's item counters.
// Corresponds to status_snapshots table in ClickHouse.
type StatusSnapshot struct {
	CandyMachine   string
	Network        string
	Version        Version
	ItemsAvailable uint64
	ItemsRedeemed  uint64
	ItemsRemaining uint64
	Price          uint64 // base units of Ticker
	Ticker         string
	ObservedAt     int64 // ms
}
