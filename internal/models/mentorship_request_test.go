package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from RequestStatus
		to   RequestStatus
		want bool
	}{
		{"pending to accepted", RequestPending, RequestAccepted, true},
		{"pending to rejected", RequestPending, RequestRejected, true},
		{"pending to cancelled", RequestPending, RequestCancelled, true},
		{"accepted to cancelled", RequestAccepted, RequestCancelled, true},
		{"accepted to pending", RequestAccepted, RequestPending, false},
		{"accepted to rejected", RequestAccepted, RequestRejected, false},
		{"cancelled back to accepted", RequestCancelled, RequestAccepted, true},
		{"cancelled to rejected", RequestCancelled, RequestRejected, false},
		{"rejected is terminal", RequestRejected, RequestAccepted, false},
		{"rejected stays terminal", RequestRejected, RequestCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestCanEnterConfirmation(t *testing.T) {
	assert.True(t, RequestAccepted.CanEnterConfirmation())
	assert.True(t, RequestPending.CanEnterConfirmation())
	assert.True(t, RequestCancelled.CanEnterConfirmation())
	assert.False(t, RequestRejected.CanEnterConfirmation())
}

func TestRequestGroupStatuses(t *testing.T) {
	assert.Equal(t, ActiveStatuses, RequestGroupActive.GetStatuses())
	assert.Equal(t, PastStatuses, RequestGroupPast.GetStatuses())
	assert.Nil(t, RequestGroup("unknown").GetStatuses())
}
