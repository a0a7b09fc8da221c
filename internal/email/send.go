package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Bone-Club-Digital/clubhouse/internal/db"
)

const memberEmailTimeout = 5 * time.Second

// SendMemberEmail looks up a member's address and delivers asynchronously.
// Missing addresses and delivery failures are logged, never surfaced to
// callers; email is best-effort alongside in-app notifications.
func SendMemberEmail(ctx context.Context, q *db.Queries, sender EmailSender, memberID int64, message Email, logger *zerolog.Logger) {
	if sender == nil || q == nil {
		return
	}
	if message.Subject == "" || message.Body == "" {
		return
	}

	member, err := q.GetMember(ctx, memberID)
	if err != nil {
		if logger != nil {
			logger.Error().Err(err).Int64("member_id", memberID).Msg("Failed to load member for email")
		}
		return
	}
	recipient := strings.TrimSpace(member.Email)
	if recipient == "" {
		return
	}

	go func() {
		sendCtx, cancel := newEmailContext(ctx, memberEmailTimeout)
		defer cancel()
		if err := sender.Send(sendCtx, recipient, message.Subject, message.Body); err != nil {
			if logger != nil {
				logger.Error().Err(err).Int64("member_id", memberID).Msg("Failed to send member email")
			}
			return
		}
		if logger != nil {
			logger.Info().Int64("member_id", memberID).Str("subject", message.Subject).Msg("Member email sent")
		}
	}()
}
