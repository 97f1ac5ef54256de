package services

import (
	"fmt"

	"github.com/conectamentor/mentoria-api/internal/models"
)

// CanConfirm is the authorization gate for confirmation. It answers one
// question: may this mentor turn this request into a mentorship right now?
//
// The rules, in evaluation order:
//  1. the acting mentor must own the request;
//  2. the request must not already have an active mentorship;
//  3. the request status must allow confirmation (accepted, pending, or
//     cancelled; a cancelled mentorship may be re-confirmed).
//
// Pure function: no I/O, the caller supplies the facts.
func CanConfirm(mentorID int64, request *models.MentorshipRequest, hasActiveMentorship bool) error {
	if request.MentorID != mentorID {
		return fmt.Errorf("%w: request %d is assigned to mentor %d", ErrNotRequestOwner, request.ID, request.MentorID)
	}

	if hasActiveMentorship {
		return fmt.Errorf("%w: request %d", ErrAlreadyConfirmed, request.ID)
	}

	if !request.Status.CanEnterConfirmation() {
		return fmt.Errorf("%w: status %q", ErrRequestNotConfirmable, request.Status)
	}

	return nil
}
