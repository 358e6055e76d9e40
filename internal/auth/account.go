// Package auth holds the single-admin account file and the signed
// session cookie that gates the review surface.
package auth

import (
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Account is the persisted admin credential.
type Account struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountStore reads and writes the admin account file.
type AccountStore struct {
	path string
}

func NewAccountStore(path string) *AccountStore {
	return &AccountStore{path: path}
}

// Exists reports whether an admin account has been created.
func (s *AccountStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Create hashes the password with bcrypt and writes the account file.
func (s *AccountStore) Create(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	now := time.Now()
	acct := Account{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	data, err := json.MarshalIndent(acct, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal admin account")
	}
	return errors.Wrap(os.WriteFile(s.path, data, 0600), "write admin account")
}

// Verify checks a username/password pair against the stored account.
func (s *AccountStore) Verify(username, password string) bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	var acct Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return false
	}
	if acct.Username != username {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) == nil
}
