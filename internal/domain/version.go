package domain

// Version identifies the on-chain candy machine schema.
type Version string

const (
	VersionV2 Version = "v2"
	VersionV3 Version = "v3"
)

// String returns the string representation of Version.
func (v Version) String() string {
	return string(v)
}

// IsValid checks if the version is a known schema.
func (v Version) IsValid() bool {
	return v == VersionV2 || v == VersionV3
}
