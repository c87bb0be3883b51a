package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitVerdictLess(t *testing.T) {
	tight := LimitVerdict{Remaining: -2}
	loose := LimitVerdict{Remaining: 5}

	assert.True(t, tight.Less(loose))
	assert.False(t, loose.Less(tight))
	assert.False(t, tight.Less(tight))
}

func TestTighten(t *testing.T) {
	var current *LimitVerdict

	current = tighten(current, LimitVerdict{Kind: KindIP, Remaining: 3})
	assert.Equal(t, int32(3), current.Remaining)

	current = tighten(current, LimitVerdict{Kind: KindURL, Remaining: -1})
	assert.Equal(t, int32(-1), current.Remaining)
	assert.Equal(t, KindURL, current.Kind)

	// A looser candidate never displaces the existing tightest verdict.
	current = tighten(current, LimitVerdict{Kind: KindHeader, Remaining: 10})
	assert.Equal(t, int32(-1), current.Remaining)
}
