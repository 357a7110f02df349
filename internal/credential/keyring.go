package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "catalog-notifier"

// SMTPPasswordKey is the keyring key under which the SMTP relay password
// is stored.
const SMTPPasswordKey = "smtp-password"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/catalog-notifier/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("catalog-notifier-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// SMTPPassword resolves the SMTP password. A non-empty value from the
// config file wins; otherwise the system keyring is consulted. An empty
// string with no error means no password is configured anywhere, which is
// valid for unauthenticated relays.
func SMTPPassword(configValue string) (string, error) {
	if configValue != "" {
		return configValue, nil
	}

	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(SMTPPasswordKey)
	if err != nil {
		if err == keyring.ErrKeyNotFound {
			return "", nil
		}
		return "", fmt.Errorf("getting credential %q: %w", SMTPPasswordKey, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
