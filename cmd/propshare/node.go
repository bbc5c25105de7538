package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitfsorg/propshare-go/chain"
	"github.com/bitfsorg/propshare-go/config"
	"github.com/bitfsorg/propshare-go/keystore"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/logging"
	"github.com/bitfsorg/propshare-go/storage"
	"github.com/bitfsorg/propshare-go/store"
)

// node is an open ledger plus the settings and deployment it was opened with.
type node struct {
	cfg   config.Config
	log   *slog.Logger
	db    *store.BoltStore
	docs  *storage.FileStore
	world *chain.World
	dep   chain.Deployment
}

// loadConfig reads <dataDir>/config.toml, falling back to defaults plus
// environment when the file does not exist yet.
func loadConfig(dataDir string) (config.Config, error) {
	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	if errors.Is(err, config.ErrConfigNotFound) {
		cfg, err = config.LoadEnv()
	}
	if err != nil {
		return config.Config{}, err
	}
	cfg.DataDir = dataDir
	if err := config.ValidateConfig(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openNode opens the ledger in dataDir. With needDeployment set, the
// bootstrapped deployment must exist.
func openNode(dataDir string, needDeployment bool) (*node, error) {
	cfg, err := loadConfig(dataDir)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	docs, err := storage.NewFileStore(cfg.DocsPath())
	if err != nil {
		return nil, err
	}
	db, err := store.OpenBoltStore(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	world, err := chain.Open(db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	n := &node{cfg: cfg, log: log, db: db, docs: docs, world: world}
	if needDeployment {
		if n.dep, err = readDeployment(cfg.DeploymentPath()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return n, nil
}

func (n *node) Close() error { return n.db.Close() }

func readDeployment(path string) (chain.Deployment, error) {
	var d chain.Deployment
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return d, fmt.Errorf("no deployment at %s: run `propshare init` first", path)
	}
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("decode deployment %s: %w", path, err)
	}
	return d, nil
}

func writeDeployment(path string, d chain.Deployment) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// resolveAddress accepts an address, a deployment alias (registry, allowlist,
// factory, revenue) or the name of a local key.
func (n *node) resolveAddress(s string) (ledger.Address, error) {
	switch strings.ToLower(s) {
	case "registry":
		return n.dep.Registry, nil
	case "allowlist", "approval":
		return n.dep.AllowList, nil
	case "factory":
		return n.dep.Factory, nil
	case "revenue":
		return n.dep.Revenue, nil
	}
	if addr, err := ledger.ParseAddress(s); err == nil {
		return addr, nil
	}
	if key, err := keysIn(n.cfg.DataDir).Load(s); err == nil {
		return ledger.AddressFromPublicKey(key.PubKey()), nil
	}
	return ledger.ZeroAddress, fmt.Errorf("%w: %q is not an address, alias or key name", ledger.ErrInvalidArgument, s)
}

// caller returns the address of the signing key.
func (n *node) caller(name string) (ledger.Address, error) {
	key, err := keysIn(n.cfg.DataDir).Load(name)
	if err != nil {
		return ledger.ZeroAddress, err
	}
	return ledger.AddressFromPublicKey(key.PubKey()), nil
}

// keysIn opens the key directory of dataDir with the session password.
func keysIn(dataDir string) *keystore.Dir {
	return keystore.Open(filepath.Join(dataDir, "keys"), flagMain.Password)
}
