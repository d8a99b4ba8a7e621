package entities

import "github.com/shopspring/decimal"

// Column bounds of the storage schema
const (
	MaxTitleLength   = 255 // bets.title
	MaxOptionLength  = 255 // bet_options.option_text
	MaxNameLength    = 150 // users.first_name, users.last_name
	MaxEmailLength   = 254 // users.email
	MaxPasswordBytes = 72  // bcrypt ignores anything longer
)

// MaxAmount is the largest value a NUMERIC(12,2) money column holds
var MaxAmount = decimal.RequireFromString("9999999999.99")
