package domain

// Defaults shared by the CLI, the configuration layer and the MCP server.
const (
	// DefaultTotalHashes is the number of seeded hash functions per signature.
	// Standard error of the estimator is roughly sqrt(J(1-J)/T), about 0.035 at J=0.5.
	DefaultTotalHashes = 200

	// DefaultThreshold is the maximum estimated distance (1 - similarity) for a pair to be reported.
	DefaultThreshold = 0.2

	// DefaultHashFamily names the hash family used when none is configured.
	DefaultHashFamily = HashFamilyXXHash

	// DefaultWorkers builds signature rows sequentially.
	DefaultWorkers = 1

	// DefaultKeyOrder orders rows lexicographically by label.
	DefaultKeyOrder = KeyOrderSorted

	// DefaultEmptySetPolicy keeps empty sets out of pair enumeration.
	DefaultEmptySetPolicy = EmptySetExclude
)

// Hash family names accepted by configuration.
const (
	HashFamilyXXHash    = "xxhash"
	HashFamilySplitMix  = "splitmix"
	HashFamilyUniversal = "universal"
)

// HashFamilyNames lists every supported hash family name.
var HashFamilyNames = []string{HashFamilyXXHash, HashFamilySplitMix, HashFamilyUniversal}
