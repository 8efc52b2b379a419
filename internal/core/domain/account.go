package domain

import "time"

// Account is the internal identity tied 1:1 to a wallet address. The wallet
// address is the ownership anchor and is immutable after creation.
type Account struct {
	ID               int64     `json:"id"`
	WalletAddress    string    `json:"wallet_address"`
	Username         *string   `json:"username,omitempty"`
	Email            *string   `json:"email,omitempty"`
	TelegramUsername *string   `json:"telegram_username,omitempty"`
	TelegramID       *int64    `json:"telegram_id,omitempty"`
	ProfilePhotoURL  *string   `json:"profile_photo_url,omitempty"`
	PhoneCountryCode *string   `json:"phone_country_code,omitempty"`
	PhoneNumber      *string   `json:"phone_number,omitempty"`
	AvailableFrom    *string   `json:"available_from,omitempty"` // HH:MM
	AvailableTo      *string   `json:"available_to,omitempty"`   // HH:MM
	Timezone         *string   `json:"timezone,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// OwnedBy reports whether the given wallet controls this account.
func (a *Account) OwnedBy(wallet string) bool {
	return a.WalletAddress == wallet
}
