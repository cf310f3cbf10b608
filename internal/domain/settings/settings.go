package settings

import "context"

// Settings is the storefront configuration document: messaging credentials
// and the hashed admin password. The plaintext admin password is never
// stored.
type Settings struct {
	WhatsappNumber    string
	TelegramBotToken  string
	TelegramChatID    string
	AdminPasswordHash string
}

// Update describes a partial settings update. Nil fields are left unchanged.
type Update struct {
	WhatsappNumber    *string
	TelegramBotToken  *string
	TelegramChatID    *string
	AdminPasswordHash *string
}

// Repository provides access to the single settings document.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, upd Update) (*Settings, error)
}
