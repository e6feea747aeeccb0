package game

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

const maxMailLength = 4000

// SendMail delivers an in-game message to one or more recipients. Mail
// carries no money; the transaction only guarantees the whole batch lands
// or none of it does.
func (s *Service) SendMail(ctx context.Context, actorID int64, recipientIDs []int64, subject, content string) error {
	subject = strings.TrimSpace(subject)
	content = strings.TrimSpace(content)
	if len(recipientIDs) == 0 || subject == "" || content == "" || len(content) > maxMailLength {
		return ErrInvalidRequest
	}
	for _, id := range recipientIDs {
		if id == actorID {
			return ErrInvalidRequest
		}
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, recipientID := range recipientIDs {
			var exists bool
			if err := tx.QueryRow(ctx, `
				SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
			`, recipientID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrUserNotFound
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO mails (to_id, from_id, subject, content, read)
				VALUES ($1, $2, $3, $4, false)
			`, recipientID, actorID, subject, content); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) ListMail(ctx context.Context, userID int64) ([]MailView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.from_id, u.username, m.subject, m.content, m.read, m.created_at
		FROM mails m
		JOIN users u ON u.id = m.from_id
		WHERE m.to_id = $1
		ORDER BY m.created_at DESC, m.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MailView, 0)
	for rows.Next() {
		var m MailView
		if err := rows.Scan(&m.ID, &m.FromID, &m.FromName, &m.Subject, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Service) ReadMail(ctx context.Context, userID, mailID int64) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE mails SET read = true WHERE id = $1 AND to_id = $2
	`, mailID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMailNotFound
	}
	return nil
}

func (s *Service) DeleteMail(ctx context.Context, userID, mailID int64) error {
	cmd, err := s.db.Exec(ctx, `
		DELETE FROM mails WHERE id = $1 AND to_id = $2
	`, mailID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMailNotFound
	}
	return nil
}
