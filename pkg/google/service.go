package google

import (
	"context"
	"fmt"

	"github.com/klokku/calendar-bridge/internal/config"
	"github.com/klokku/calendar-bridge/pkg/event"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type ServiceImpl struct {
	credentials Credentials
	cfg         config.Google
}

func NewService(credentials Credentials, cfg config.Google) *ServiceImpl {
	return &ServiceImpl{
		credentials: credentials,
		cfg:         cfg,
	}
}

// Calendar opens an authenticated session against the configured calendar.
func (s *ServiceImpl) Calendar(ctx context.Context) (event.Calendar, error) {
	service, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	return newGoogleCalendar(service, s.cfg.CalendarId), nil
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context) (*calendar.Service, error) {
	if s.credentials.IsZero() {
		return nil, ErrNoCredentials
	}

	jwtConfig, err := google.JWTConfigFromJSON(s.credentials.JSON(), calendar.CalendarScope)
	if err != nil {
		err := fmt.Errorf("unable to parse service account credentials: %v", err)
		log.Error(err)
		return nil, err
	}
	if s.cfg.Subject != "" {
		jwtConfig.Subject = s.cfg.Subject
	}

	opts := []option.ClientOption{option.WithHTTPClient(jwtConfig.Client(ctx))}
	if s.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.cfg.Endpoint))
	}
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}

	return service, nil
}
