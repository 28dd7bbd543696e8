package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	evergreen := &Coupon{Code: "SAVE20"}
	assert.False(t, evergreen.Expired(now))

	future := now.Add(24 * time.Hour)
	active := &Coupon{Code: "WELCOME10", ExpiresAt: &future}
	assert.False(t, active.Expired(now))

	past := now.Add(-24 * time.Hour)
	expired := &Coupon{Code: "EXPIRED5", ExpiresAt: &past}
	assert.True(t, expired.Expired(now))
}
