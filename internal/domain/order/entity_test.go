// internal/domain/order/entity_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to approval", StatusPending, StatusPendingApproval, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending skips to shipped", StatusPending, StatusShipped, false},
		{"approval to confirmed", StatusPendingApproval, StatusConfirmed, true},
		{"approval to cancelled", StatusPendingApproval, StatusCancelled, true},
		{"confirmed to processing", StatusConfirmed, StatusProcessing, true},
		{"confirmed back to pending", StatusConfirmed, StatusPending, false},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"shipped cannot cancel", StatusShipped, StatusCancelled, false},
		{"delivered to refunded", StatusDelivered, StatusRefunded, true},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"refunded is terminal", StatusRefunded, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}
