package cache

import "slices"

// ReportKeyOpts holds the search options that affect a cached report.
type ReportKeyOpts struct {
	Mode       string `json:"mode"`
	Order      string `json:"order"`
	Exhaustive bool   `json:"exhaustive"`
	Optimize   bool   `json:"optimize"`
	Formula    bool   `json:"formula"`
}

// Keyer builds cache keys. Implementations may namespace keys, e.g. per
// tenant or per deployment.
type Keyer interface {
	// ReportKey returns the key for a report over graphs with the given
	// content hashes. Order matters: graph indices appear in the formula.
	ReportKey(graphHashes []string, opts ReportKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(graphHashes []string, opts ReportKeyOpts) string {
	return hashKey("report", slices.Clone(graphHashes), opts)
}

// ScopedKeyer prefixes every key produced by an inner Keyer.
type ScopedKeyer struct {
	Scope string
	Inner Keyer
}

// NewScopedKeyer returns a keyer that places keys under scope.
func NewScopedKeyer(scope string) *ScopedKeyer {
	return &ScopedKeyer{Scope: scope, Inner: DefaultKeyer{}}
}

// ReportKey implements Keyer.
func (k *ScopedKeyer) ReportKey(graphHashes []string, opts ReportKeyOpts) string {
	return k.Scope + ":" + k.Inner.ReportKey(graphHashes, opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
