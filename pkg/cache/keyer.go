package cache

// Keyer derives cache keys. Implementations must return different keys for
// different inputs.
type Keyer interface {
	// ResultKey keys the analysis of a document: heads, order and strip
	// report.
	ResultKey(docHash string, opts ResultKeyOpts) string

	// ArtifactKey keys a rendered view of a document.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ResultKeyOpts lists the options that change an analysis result.
type ResultKeyOpts struct {
	Sloppy     bool   `json:"sloppy"`
	Unresolved string `json:"unresolved"`
}

// ArtifactKeyOpts lists the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Stripped bool   `json:"stripped"`
	Sloppy   bool   `json:"sloppy"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer hashes the document hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements [Keyer].
func (DefaultKeyer) ResultKey(docHash string, opts ResultKeyOpts) string {
	return hashKey("result", docHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}
