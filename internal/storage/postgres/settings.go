package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgalife/storefront/internal/domain/settings"
)

const (
	getSettingsSQL = `SELECT whatsapp_number, telegram_bot_token, telegram_chat_id, admin_password_hash
		FROM settings WHERE id = 1`

	updateSettingsSQL = `UPDATE settings SET
		whatsapp_number = $1, telegram_bot_token = $2, telegram_chat_id = $3, admin_password_hash = $4
		WHERE id = 1`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by the single
// settings row in PostgreSQL.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the settings document.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.pool.QueryRow(ctx, getSettingsSQL).Scan(
		&s.WhatsappNumber, &s.TelegramBotToken, &s.TelegramChatID, &s.AdminPasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return &s, nil
}

// Update applies a partial update inside a transaction so concurrent saves
// cannot interleave into a torn document.
func (r *SettingsRepository) Update(ctx context.Context, upd settings.Update) (*settings.Settings, error) {
	var updated settings.Settings

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var s settings.Settings
		err := tx.QueryRow(ctx, getSettingsSQL+` FOR UPDATE`).Scan(
			&s.WhatsappNumber, &s.TelegramBotToken, &s.TelegramChatID, &s.AdminPasswordHash,
		)
		if err != nil {
			return err
		}

		if upd.WhatsappNumber != nil {
			s.WhatsappNumber = *upd.WhatsappNumber
		}
		if upd.TelegramBotToken != nil {
			s.TelegramBotToken = *upd.TelegramBotToken
		}
		if upd.TelegramChatID != nil {
			s.TelegramChatID = *upd.TelegramChatID
		}
		if upd.AdminPasswordHash != nil {
			s.AdminPasswordHash = *upd.AdminPasswordHash
		}

		if _, err := tx.Exec(ctx, updateSettingsSQL,
			s.WhatsappNumber, s.TelegramBotToken, s.TelegramChatID, s.AdminPasswordHash,
		); err != nil {
			return err
		}

		updated = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating settings: %w", err)
	}
	return &updated, nil
}
