package spool

import (
	"hash/fnv"
	"strconv"
)

const noDSNDirName = "no-dsn"

// isolatedRootName derives the per-DSN directory name under cacheRoot/Sentry.
// The hash is non-cryptographic and only needs to be stable across runs, not
// collision-resistant against an adversary: any hash function that is
// deterministic within the SDK suffices per the on-disk layout contract.
func isolatedRootName(dsn string) string {
	if dsn == "" {
		return noDSNDirName
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(dsn)) // Hash.Write never returns an error.

	return strconv.FormatUint(h.Sum64(), 16)
}
