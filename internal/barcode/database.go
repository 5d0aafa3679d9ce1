package barcode

// Database is the immutable set of genuine codes. It is built once by a
// loader through a Builder and never mutated afterwards, so it is safe to
// share between goroutines without locking.
type Database struct {
	codes     map[string]struct{}
	perPrefix map[string]int
}

// Builder collects codes for a Database. It is not safe for concurrent use.
type Builder struct {
	codes     map[string]struct{}
	perPrefix map[string]int
}

func NewBuilder(sizeHint int) *Builder {
	return &Builder{
		codes:     make(map[string]struct{}, sizeHint),
		perPrefix: make(map[string]int),
	}
}

// Add inserts the canonical form of code. It reports false, and stores
// nothing, when the canonical code is not CodeLength long. Duplicates are
// accepted and counted once.
func (b *Builder) Add(code string) bool {
	code = Canonicalize(code)
	if len(code) != CodeLength {
		return false
	}
	if _, dup := b.codes[code]; dup {
		return true
	}
	b.codes[code] = struct{}{}
	b.perPrefix[PrefixOf(code)]++
	return true
}

// Build freezes the collected codes. The builder must not be used afterwards.
func (b *Builder) Build() *Database {
	db := &Database{codes: b.codes, perPrefix: b.perPrefix}
	b.codes, b.perPrefix = nil, nil
	return db
}

// IsGenuine canonicalizes candidate and tests membership. Callers validate
// the format first; a nil database holds nothing.
func (db *Database) IsGenuine(candidate string) bool {
	if db == nil {
		return false
	}
	_, ok := db.codes[Canonicalize(candidate)]
	return ok
}

// Len is the number of distinct codes.
func (db *Database) Len() int {
	if db == nil {
		return 0
	}
	return len(db.codes)
}

// PerPrefix returns a copy of the code count per 16-character prefix. It is
// diagnostic only.
func (db *Database) PerPrefix() map[string]int {
	out := make(map[string]int)
	if db == nil {
		return out
	}
	for k, v := range db.perPrefix {
		out[k] = v
	}
	return out
}
