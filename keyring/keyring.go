// Package keyring provides secure storage for the NordVPN access token.
// It uses the system keyring when available, falling back to an
// encrypted local file when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"nordgen/common"
)

const (
	// serviceName is the identifier used in the system keyring.
	serviceName = "nordgen"
	// accountName is the keyring entry holding the access token.
	accountName = "access-token"
)

// Storage backend state.
var (
	mu              sync.Mutex
	useLocalStorage bool
	localStoreFile  string
	encryptionKey   []byte
	initialized     bool
)

func initStorage() {
	if initialized {
		return
	}

	// Try system keyring first
	testKey := "nordgen-test-init"
	err := keyring.Set(serviceName, testKey, "test")
	if err == nil {
		keyring.Delete(serviceName, testKey)
		useLocalStorage = false
	} else {
		useLocalStorage = true
		initLocalStorage()
	}
	initialized = true
}

func initLocalStorage() {
	configDir, err := common.GetConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config", common.ConfigDirName)
		os.MkdirAll(configDir, 0700)
	}
	localStoreFile = filepath.Join(configDir, common.CredentialsFileName)

	// Derive the encryption key from machine-specific data
	hostname, _ := os.Hostname()
	keyData := fmt.Sprintf("nordgen-%s-%s-%d", hostname, machineID(), os.Getuid())
	hash := sha256.Sum256([]byte(keyData))
	encryptionKey = hash[:]
}

func machineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	return "default-machine-id"
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// StoreToken saves the access token.
func StoreToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}

	mu.Lock()
	defer mu.Unlock()
	initStorage()

	if useLocalStorage {
		return storeLocal(token)
	}

	if err := keyring.Set(serviceName, accountName, token); err != nil {
		// Fallback to local storage
		useLocalStorage = true
		initLocalStorage()
		return storeLocal(token)
	}
	return nil
}

func storeLocal(token string) error {
	encrypted, err := encrypt([]byte(token))
	if err != nil {
		return common.WrapError(common.ErrCredentialStorage, err.Error())
	}
	if err := os.WriteFile(localStoreFile, encrypted, 0600); err != nil {
		return common.WrapError(common.ErrCredentialStorage, err.Error())
	}
	return nil
}

// Token retrieves the stored access token.
func Token() (string, error) {
	mu.Lock()
	defer mu.Unlock()
	initStorage()

	if useLocalStorage {
		return tokenLocal()
	}

	token, err := keyring.Get(serviceName, accountName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", common.ErrTokenNotFound
		}
		// Try local storage as fallback
		return tokenLocal()
	}
	return token, nil
}

func tokenLocal() (string, error) {
	data, err := os.ReadFile(localStoreFile)
	if err != nil {
		return "", common.ErrTokenNotFound
	}

	decrypted, err := decrypt(data)
	if err != nil {
		return "", common.ErrTokenNotFound
	}
	return string(decrypted), nil
}

// DeleteToken removes the stored access token from every backend.
func DeleteToken() error {
	mu.Lock()
	defer mu.Unlock()
	initStorage()

	if !useLocalStorage {
		keyring.Delete(serviceName, accountName)
	}

	if localStoreFile == "" {
		initLocalStorage()
	}
	if err := os.Remove(localStoreFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HasToken checks whether an access token is stored.
func HasToken() bool {
	_, err := Token()
	return err == nil
}
