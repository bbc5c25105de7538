package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

const keyExt = ".key"

// Dir is a directory of password-encrypted private keys, one file per name.
type Dir struct {
	path     string
	password string
}

// Open returns the key directory at path. All keys share one password.
func Open(path, password string) *Dir {
	return &Dir{path: path, password: password}
}

// Path returns the file holding key name.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, name+keyExt)
}

// Generate creates a fresh mnemonic, stores its first key under name and
// returns the mnemonic so the caller can record it.
func (d *Dir) Generate(name string, mainnet bool) (*ec.PrivateKey, string, error) {
	mnemonic, err := GenerateMnemonic(Mnemonic12Words)
	if err != nil {
		return nil, "", err
	}
	key, err := DeriveKey(mnemonic, "", 0, mainnet)
	if err != nil {
		return nil, "", err
	}
	if err := d.Put(name, key.PrivateKey); err != nil {
		return nil, "", err
	}
	return key.PrivateKey, mnemonic, nil
}

// Restore stores the index-th key of mnemonic under name.
func (d *Dir) Restore(name, mnemonic string, index uint32, mainnet bool) (*ec.PrivateKey, error) {
	key, err := DeriveKey(mnemonic, "", index, mainnet)
	if err != nil {
		return nil, err
	}
	if err := d.Put(name, key.PrivateKey); err != nil {
		return nil, err
	}
	return key.PrivateKey, nil
}

// Put encrypts priv into a new key file. Existing keys are never overwritten.
func (d *Dir) Put(name string, priv *ec.PrivateKey) error {
	if err := checkName(name); err != nil {
		return err
	}
	path := d.Path(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %q", ErrKeyExists, name)
	}
	data, err := Encrypt(priv.Serialize(), d.password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.path, 0700); err != nil {
		return fmt.Errorf("keystore: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("keystore: write %q: %w", name, err)
	}
	return nil
}

// Load decrypts key name.
func (d *Dir) Load(name string) (*ec.PrivateKey, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("keystore: read %q: %w", name, err)
	}
	raw, err := Decrypt(data, d.password)
	if err != nil {
		return nil, fmt.Errorf("keystore: key %q: %w", name, err)
	}
	priv, _ := ec.PrivateKeyFromBytes(raw)
	return priv, nil
}

// Names lists the stored key names, sorted.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keystore: list: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), keyExt) {
			names = append(names, strings.TrimSuffix(e.Name(), keyExt))
		}
	}
	sort.Strings(names)
	return names, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
