package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const (
	AlertDonation     = "donation"
	AlertLevelUp      = "level_up"
	AlertFriendReq    = "send_fr"
	AlertSuperSoldier = "super_soldier"
)

// AlertDraft is a notification pending insertion for a recipient.
type AlertDraft struct {
	Type    string
	Message string
	From    *int64
}

func buildLevelUpAlert(level int32) AlertDraft {
	return AlertDraft{
		Type:    AlertLevelUp,
		Message: fmt.Sprintf("Congrats! You have leveled up to level %d and received 5 gold", level),
	}
}

func buildSuperSoldierAlert() AlertDraft {
	return AlertDraft{
		Type:    AlertSuperSoldier,
		Message: "You are a Super Soldier and have received 5 gold",
	}
}

func buildDonationAlert(senderID int64, senderName string, goldMicros int64, currency string, amountMicros int64) AlertDraft {
	parts := make([]string, 0, 2)
	if goldMicros > 0 {
		parts = append(parts, FormatMicros(goldMicros)+" Gold")
	}
	if amountMicros > 0 && currency != "" {
		parts = append(parts, FormatMicros(amountMicros)+" "+currency)
	}
	return AlertDraft{
		Type:    AlertDonation,
		From:    &senderID,
		Message: fmt.Sprintf("%s has sent you %s", senderName, strings.Join(parts, " and ")),
	}
}

func buildFriendReqAlert(senderID int64, senderName string) AlertDraft {
	return AlertDraft{
		Type:    AlertFriendReq,
		From:    &senderID,
		Message: fmt.Sprintf("You've received a friend request from %s", senderName),
	}
}

func insertAlert(ctx context.Context, tx pgx.Tx, recipientID int64, draft AlertDraft) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO alerts (to_id, type, message, read, from_id)
		VALUES ($1, $2, $3, false, $4)
	`, recipientID, draft.Type, draft.Message, draft.From)
	return err
}

// notify writes alerts outside the primary transaction. Notification loss is
// tolerated: failures are logged and never propagated, so an alert hiccup
// cannot block an otherwise-valid economic transfer.
func (s *Service) notify(ctx context.Context, recipientID int64, drafts ...AlertDraft) {
	for _, draft := range drafts {
		_, err := s.db.Exec(ctx, `
			INSERT INTO alerts (to_id, type, message, read, from_id)
			VALUES ($1, $2, $3, false, $4)
		`, recipientID, draft.Type, draft.Message, draft.From)
		if err != nil {
			s.log.Warn("alert delivery failed",
				"recipient", recipientID, "type", draft.Type, "err", err)
		}
	}
}

func (s *Service) ListAlerts(ctx context.Context, userID int64) ([]AlertView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, type, message, read, from_id, created_at
		FROM alerts
		WHERE to_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AlertView, 0)
	for rows.Next() {
		var a AlertView
		if err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.Read, &a.From, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Service) ReadAlert(ctx context.Context, userID, alertID int64) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE alerts SET read = true WHERE id = $1 AND to_id = $2
	`, alertID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (s *Service) DeleteAlert(ctx context.Context, userID, alertID int64) error {
	cmd, err := s.db.Exec(ctx, `
		DELETE FROM alerts WHERE id = $1 AND to_id = $2
	`, alertID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// deleteAlertReturningFrom removes a handshake alert inside a transaction
// and yields its originating actor id.
func deleteAlertReturningFrom(ctx context.Context, tx pgx.Tx, alertID, recipientID int64) (int64, error) {
	var from *int64
	err := tx.QueryRow(ctx, `
		DELETE FROM alerts WHERE id = $1 AND to_id = $2
		RETURNING from_id
	`, alertID, recipientID).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAlertNotFound
	}
	if err != nil {
		return 0, err
	}
	if from == nil {
		return 0, fmt.Errorf("%w: alert has no sender", ErrInvalidRequest)
	}
	return *from, nil
}
