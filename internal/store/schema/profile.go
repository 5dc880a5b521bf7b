package schema

import "time"

// Profile represents the profiles table - maps a signed-in user to the wallet associated with it
type Profile struct {
	ID            string    `gorm:"column:id;primaryKey;type:uuid"`
	WalletAddress string    `gorm:"column:wallet_address;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

func (Profile) TableName() string {
	return "profiles"
}
