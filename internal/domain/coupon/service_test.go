package coupon

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationRequestBinding(t *testing.T) {
	// a zero-cent subtotal is a legitimate request
	var req ValidationRequest
	err := binding.JSON.BindBody([]byte(`{"code":"SAVE20","subtotal":0}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", req.Code)
	assert.Equal(t, int64(0), req.Subtotal)

	var missing ValidationRequest
	err = binding.JSON.BindBody([]byte(`{"subtotal":5000}`), &missing)
	assert.Error(t, err, "code is required")

	var negative ValidationRequest
	err = binding.JSON.BindBody([]byte(`{"code":"SAVE20","subtotal":-1}`), &negative)
	assert.Error(t, err)
}
