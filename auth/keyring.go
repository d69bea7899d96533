// Package auth keeps the API bearer token in the system keyring.
package auth

import (
	"errors"

	"github.com/reelplay/reelplay/constant"
	"github.com/zalando/go-keyring"
)

const user = "api-token"

// SetToken persists the API token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(constant.App, user, token)
}

// GetToken retrieves the API token. A missing token is not an error.
func GetToken() (string, error) {
	token, err := keyring.Get(constant.App, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}

// DeleteToken removes the API token. Deleting a missing token is not an error.
func DeleteToken() error {
	err := keyring.Delete(constant.App, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
