package ratelimit

import (
	"fmt"
	"hash/fnv"
)

// counterKey builds the "rate_limiter:<kind>:<hash>" store key for an
// identity value. Hashing the value before storing it bounds the key
// length and keeps user-visible tokens (API keys, Authorization headers)
// out of the store's keyspace. Different strategy kinds never collide
// because the kind tag is part of the key, independent of the hash.
func counterKey(kind Kind, identity string) string {
	return fmt.Sprintf("rate_limiter:%s:%d", kind, hash64(identity))
}

func hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
