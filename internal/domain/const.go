package domain

import "time"

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// DEFAULT_TOKEN_DECIMALS is used when a contract's decimals() call fails
	DEFAULT_TOKEN_DECIMALS uint8 = 18

	// DISPLAY_DECIMAL_PLACES is the rounding precision for UI balances
	DISPLAY_DECIMAL_PLACES int32 = 2

	// NOTIFICATION_DISPLAY_DURATION is how long an exchange notification stays visible
	NOTIFICATION_DISPLAY_DURATION = 5 * time.Second
)
