package config

// DefaultConfigTemplate is written by `setsim init`
const DefaultConfigTemplate = `# setsim configuration
# Environment variables override these values, e.g. SETSIM_MINHASH_TOTAL_HASHES=400

[minhash]
# Number of seeded hash functions (signature length). Higher is more accurate and slower.
total_hashes = 200
# Keyed hash family: "xxhash", "splitmix" or "universal"
hash_family = "xxhash"
# Rows built concurrently, 0 = one per CPU
workers = 1

[similarity]
# Maximum estimated distance (1 - similarity) of a reported pair
threshold = 0.2
# How empty sets are treated: "exclude" skips them, "sentinel" compares their all-max rows
empty_set_policy = "exclude"
# Also compute exact Jaccard similarity for reported pairs
exact = false

[input]
# Dataset format: "auto", "json", "yaml", "toml", "csv" or "dir"
format = "auto"
# Row order: "sorted" or "insertion"
key_order = "sorted"
# Glob patterns used when the dataset is a directory
include_patterns = ["**/*.txt"]
exclude_patterns = []

[output]
# "text", "json", "yaml" or "csv"
format = "text"
# Directory for generated report files (default: .setsim/reports)
directory = ""
show_matrix = false
`
