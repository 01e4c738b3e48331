package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "CALENDAR_"

type Application struct {
	Port    int     `koanf:"port"`
	Google  Google  `koanf:"google"`
	Metrics Metrics `koanf:"metrics"`
}

type Google struct {
	// ServiceAccountB64 is the base64 encoded service account key. It takes
	// precedence over ServiceAccountFile.
	ServiceAccountB64  string `koanf:"serviceaccountb64"`
	ServiceAccountFile string `koanf:"serviceaccountfile"`
	CalendarId         string `koanf:"calendarid"`
	// Subject is the user impersonated through domain-wide delegation. Empty
	// means the service account acts as itself.
	Subject  string `koanf:"subject"`
	Endpoint string `koanf:"endpoint"`
}

type Metrics struct {
	Enabled bool `koanf:"enabled"`
}

func defaults() Application {
	return Application{
		Port: 5000,
		Google: Google{
			ServiceAccountFile: "service_account.json",
			CalendarId:         "primary",
		},
		Metrics: Metrics{
			Enabled: true,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if os.IsNotExist(err) {
				log.Infof("Config file not found at %s, using defaults and environment variables", path)
			} else {
				log.Errorf("error loading config from YAML: %v", err)
				return Application{}, err
			}
		} else {
			log.Infof("Loaded configuration from file: %s", path)
		}
	}

	err = k.Load(env.Provider(".", env.Opt{
		TransformFunc: transformEnv,
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// transformEnv maps environment variables onto config keys. PORT and
// SERVICE_ACCOUNT_B64 are accepted without a prefix, everything else needs
// CALENDAR_. Returning an empty key skips the variable.
func transformEnv(k, v string) (string, any) {
	switch k {
	case "PORT":
		return "port", v
	case "SERVICE_ACCOUNT_B64":
		return "google.serviceaccountb64", v
	}
	if !strings.HasPrefix(k, envPrefix) {
		return "", nil
	}
	k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
	return k, v
}
