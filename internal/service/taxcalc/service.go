package taxcalc

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"FiscoBot/internal/lib/sl"
)

// Service computes the IGS (impôt général synthétique) from a taxpayer's
// declared sector and annual revenue. Registered in the service registry
// under "taxcalc" and called from service steps.
type Service struct {
	log *slog.Logger
}

// NewService creates the IGS calculator service.
func NewService(logger *slog.Logger) *Service {
	return &Service{log: logger.With(sl.Module("taxcalc-service"))}
}

// Band is one IGS bracket for the informal sector.
type Band struct {
	UpTo   float64
	Amount float64
	Label  string
}

var informalBands = []Band{
	{UpTo: 500_000, Amount: 20_000, Label: "A"},
	{UpTo: 1_000_000, Amount: 30_000, Label: "B"},
	{UpTo: 2_500_000, Amount: 60_000, Label: "C"},
	{UpTo: 5_000_000, Amount: 150_000, Label: "D"},
}

const (
	formalRate    = 0.022
	formalMinimum = 50_000
	currency      = "XAF"
)

// Call dispatches a service-step method.
func (s *Service) Call(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	switch method {
	case "compute":
		return s.compute(params)
	}
	return nil, fmt.Errorf("unknown method: %s", method)
}

func (s *Service) compute(params map[string]any) (map[string]any, error) {
	sector, _ := params["sector"].(string)
	revenue, err := toNumber(params["revenue"])
	if err != nil {
		return nil, fmt.Errorf("invalid revenue: %w", err)
	}

	var amount float64
	var band string

	switch sector {
	case "informal":
		for _, b := range informalBands {
			if revenue < b.UpTo {
				amount = b.Amount
				band = b.Label
				break
			}
		}
		if band == "" {
			// Above the last informal bracket the formal regime applies.
			amount = formalAmount(revenue)
			band = "formal"
		}
	case "formal":
		amount = formalAmount(revenue)
		band = "formal"
	default:
		return nil, fmt.Errorf("unknown sector: %q", sector)
	}

	s.log.With(
		slog.String("sector", sector),
		slog.Float64("revenue", revenue),
		slog.Float64("amount", amount),
	).Debug("computed igs")

	return map[string]any{
		"amount":   amount,
		"band":     band,
		"currency": currency,
	}, nil
}

func formalAmount(revenue float64) float64 {
	amount := revenue * formalRate
	if amount < formalMinimum {
		amount = formalMinimum
	}
	return amount
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("not a number: %v", v)
}
