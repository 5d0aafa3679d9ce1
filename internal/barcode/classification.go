package barcode

// Kind is the outcome of one check.
type Kind int

const (
	// NotReady means the database has not been loaded (yet, or ever).
	NotReady Kind = iota
	FormatInvalid
	Genuine
	Counterfeit
)

// String is the label used in analytics events.
func (k Kind) String() string {
	switch k {
	case NotReady:
		return "not-ready"
	case FormatInvalid:
		return "format-invalid"
	case Genuine:
		return "genuine"
	case Counterfeit:
		return "counterfeit"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for _, k := range []Kind{NotReady, FormatInvalid, Genuine, Counterfeit} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Classification is a Kind plus, for genuine codes, the matched prefix.
type Classification struct {
	Kind   Kind
	Prefix Prefix
}

// Classify runs the format check and, if it passes, the lookup. A nil db
// means the database is not available and yields NotReady.
func Classify(prefixes PrefixSet, db *Database, code string) Classification {
	if db == nil {
		return Classification{Kind: NotReady}
	}
	if !prefixes.IsWellFormed(code) {
		return Classification{Kind: FormatInvalid}
	}
	if !db.IsGenuine(code) {
		return Classification{Kind: Counterfeit}
	}
	p, _ := prefixes.Match(code)
	return Classification{Kind: Genuine, Prefix: p}
}
