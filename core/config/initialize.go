package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"

	"github.com/spf13/afero"
)

// Initialize sets up dir as a configuration directory, creating
// whatever is missing and leaving existing files alone. Progress is
// reported on logger.
func Initialize(dir string, logger *log.Logger) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return initializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

func initializeFs(fs afero.Fs, logger *log.Logger) error {
	if exists, err := afero.Exists(fs, ConfigurationName); err != nil {
		return err
	} else if !exists {
		logger.Printf("creating %s", ConfigurationName)
		if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return err
		}
	}

	if exists, err := afero.Exists(fs, PrivateKeyName); err != nil {
		return err
	} else if !exists {
		logger.Printf("generating host key %s", PrivateKeyName)
		keyPem, err := generateHostKey()
		if err != nil {
			return err
		}
		if err := afero.WriteFile(fs, PrivateKeyName, keyPem, 0600); err != nil {
			return err
		}
	}

	logger.Printf("creating %s", LogsDirName)
	return fs.MkdirAll(LogsDirName, 0700)
}

func generateHostKey() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
