package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypePredicates(t *testing.T) {
	assert.True(t, TypeB2B.WholesalePriced())
	assert.True(t, TypeVolumeBuyer.WholesalePriced())
	assert.False(t, TypeB2C.WholesalePriced())
	assert.False(t, TypeGSA.WholesalePriced())

	assert.True(t, TypeGSA.GovernmentPriced())
	assert.True(t, TypeGovernment.GovernmentPriced())
	assert.False(t, TypeB2B.GovernmentPriced())

	assert.True(t, TypeB2B.TaxExempt())
	assert.True(t, TypeGSA.TaxExempt())
	assert.True(t, TypeGovernment.TaxExempt())
	// Volume buyers get wholesale pricing but still pay tax
	assert.False(t, TypeVolumeBuyer.TaxExempt())
	assert.False(t, TypeB2C.TaxExempt())
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeB2C.Valid())
	assert.True(t, TypeVolumeBuyer.Valid())
	assert.False(t, Type("wholesale").Valid())
	assert.False(t, Type("").Valid())
}

func TestEffectiveHardOrderLimit(t *testing.T) {
	b2b := &User{AccountType: TypeB2B}
	assert.Equal(t, int64(2500000), b2b.EffectiveHardOrderLimit(2500000))

	b2b.HardOrderLimit = 1000000
	assert.Equal(t, int64(1000000), b2b.EffectiveHardOrderLimit(2500000))

	// Consumer and government accounts carry no hard limit
	b2c := &User{AccountType: TypeB2C, HardOrderLimit: 1000000}
	assert.Equal(t, int64(0), b2c.EffectiveHardOrderLimit(2500000))

	gsa := &User{AccountType: TypeGSA}
	assert.Equal(t, int64(0), gsa.EffectiveHardOrderLimit(2500000))
}

func TestEffectiveApprovalThreshold(t *testing.T) {
	b2b := &User{AccountType: TypeB2B}
	assert.Equal(t, int64(500000), b2b.EffectiveApprovalThreshold(500000))

	b2b.ApprovalThreshold = 200000
	assert.Equal(t, int64(200000), b2b.EffectiveApprovalThreshold(500000))

	b2c := &User{AccountType: TypeB2C}
	assert.Equal(t, int64(0), b2c.EffectiveApprovalThreshold(500000))
}
