package models

// Account is an entry of the mock credential table.
type Account struct {
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never expose in JSON
	Tier         AccountTier `json:"tier"`
}
