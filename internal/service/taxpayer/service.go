package taxpayer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"FiscoBot/entity"
	"FiscoBot/internal/lib/sl"
)

// Repository defines the database operations for taxpayers.
type Repository interface {
	UpsertTaxpayer(ctx context.Context, t *entity.Taxpayer) error
	GetTaxpayerByPhone(ctx context.Context, phone string) (*entity.Taxpayer, error)
}

// Service looks up and registers taxpayers. Registered in the service
// registry under "taxpayer"; the onboarding and registration workflows
// call it from their service steps.
type Service struct {
	repository Repository
	log        *slog.Logger
}

// NewService creates the taxpayer service. The repository may be nil
// (Mongo disabled), in which case lookups report not found and
// registrations stay in memory for the session only.
func NewService(logger *slog.Logger) *Service {
	return &Service{log: logger.With(sl.Module("taxpayer-service"))}
}

// SetRepository attaches the persistence backend.
func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

// Call dispatches a service-step method.
func (s *Service) Call(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	switch method {
	case "lookup":
		return s.lookup(ctx, params)
	case "register":
		return s.register(ctx, params)
	}
	return nil, fmt.Errorf("unknown method: %s", method)
}

func (s *Service) lookup(ctx context.Context, params map[string]any) (map[string]any, error) {
	phone, _ := params["phone"].(string)
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}

	if s.repository == nil {
		return map[string]any{"found": false}, nil
	}

	t, err := s.repository.GetTaxpayerByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("taxpayer lookup: %w", err)
	}
	if t == nil {
		return map[string]any{"found": false}, nil
	}

	return map[string]any{
		"found": true,
		"uuid":  t.UUID,
		"name":  t.Name,
	}, nil
}

func (s *Service) register(ctx context.Context, params map[string]any) (map[string]any, error) {
	name, _ := params["name"].(string)
	phone, _ := params["phone"].(string)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("name and phone are required")
	}

	t := &entity.Taxpayer{
		UUID:      uuid.NewString(),
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if email, ok := params["email"].(string); ok {
		t.Email = email
	}
	if region, ok := params["region"].(string); ok {
		t.Region = region
	}
	if sector, ok := params["sector"].(string); ok {
		t.Sector = sector
	}

	if s.repository != nil {
		if err := s.repository.UpsertTaxpayer(ctx, t); err != nil {
			return nil, fmt.Errorf("taxpayer upsert: %w", err)
		}
	}

	s.log.With(
		slog.String("uuid", t.UUID),
		sl.Secret("phone", t.Phone),
	).Info("taxpayer registered")

	return map[string]any{"uuid": t.UUID, "name": t.Name}, nil
}
