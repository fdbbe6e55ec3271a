package config

import (
	"encoding/json"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/Shopify/ejson"
	"github.com/caarlos0/env/v6"
)

// ejsonKeyDir is where ejson private keys are looked up by public key.
const ejsonKeyDir = "/opt/ejson/keys"

// Secrets holds values that never live in tesoro.yaml.
type Secrets struct {
	DBPassword string `json:"db_password" env:"TESORO_DB_PASSWORD"`
}

// readSecrets merges the environment over the optional ejson file.
func readSecrets(filename string) (*Secrets, error) {
	envSecrets := Secrets{}
	if err := env.Parse(&envSecrets); err != nil {
		return nil, fmt.Errorf("parsing secret environment: %w", err)
	}
	if filename == "" {
		return &envSecrets, nil
	}

	fileSecrets, err := readEjsonSecrets(filename)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&envSecrets, *fileSecrets); err != nil {
		return nil, fmt.Errorf("merging secrets: %w", err)
	}
	return &envSecrets, nil
}

func readEjsonSecrets(filename string) (*Secrets, error) {
	raw, err := ejson.DecryptFile(filename, ejsonKeyDir, os.Getenv("TESORO_EJSON_PRIVATE_KEY"))
	if err != nil {
		return nil, fmt.Errorf("decrypting secrets %s: %w", filename, err)
	}
	var s Secrets
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing secrets %s: %w", filename, err)
	}
	return &s, nil
}
