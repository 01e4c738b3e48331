package google

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/klokku/calendar-bridge/internal/config"
	log "github.com/sirupsen/logrus"
)

var ErrNoCredentials = errors.New("no service account credentials configured")

// Credentials is a parsed service account key. It is immutable once built.
type Credentials struct {
	raw         []byte
	ClientEmail string
	ProjectId   string
}

type serviceAccountKey struct {
	Type        string `json:"type"`
	ProjectId   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// JSON returns a copy of the raw key.
func (c Credentials) JSON() []byte {
	return bytes.Clone(c.raw)
}

func (c Credentials) IsZero() bool {
	return len(c.raw) == 0
}

// LoadCredentials reads the service account key from the base64 value when
// set, otherwise from the configured file. ErrNoCredentials is returned when
// neither is available.
func LoadCredentials(cfg config.Google) (Credentials, error) {
	if cfg.ServiceAccountB64 != "" {
		creds, err := DecodeServiceAccount(cfg.ServiceAccountB64)
		if err != nil {
			return Credentials{}, err
		}
		log.Infof("Loaded service account %s from environment", creds.ClientEmail)
		return creds, nil
	}

	if cfg.ServiceAccountFile == "" {
		return Credentials{}, ErrNoCredentials
	}
	raw, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("%w: %s not found", ErrNoCredentials, cfg.ServiceAccountFile)
		}
		return Credentials{}, fmt.Errorf("unable to read service account file: %w", err)
	}
	creds, err := ParseServiceAccount(raw)
	if err != nil {
		return Credentials{}, err
	}
	log.Infof("Loaded service account %s from %s", creds.ClientEmail, cfg.ServiceAccountFile)
	return creds, nil
}

func DecodeServiceAccount(encoded string) (Credentials, error) {
	encoded = strings.Join(strings.Fields(encoded), "")
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		var rawErr error
		raw, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if rawErr != nil {
			return Credentials{}, fmt.Errorf("invalid base64 service account key: %w", err)
		}
	}
	return ParseServiceAccount(raw)
}

func ParseServiceAccount(raw []byte) (Credentials, error) {
	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return Credentials{}, fmt.Errorf("invalid service account key: %w", err)
	}
	if key.Type != "service_account" {
		return Credentials{}, fmt.Errorf("invalid service account key: unexpected type %q", key.Type)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return Credentials{}, errors.New("invalid service account key: client_email and private_key are required")
	}
	return Credentials{
		raw:         bytes.Clone(raw),
		ClientEmail: key.ClientEmail,
		ProjectId:   key.ProjectId,
	}, nil
}
