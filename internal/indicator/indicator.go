// Package indicator manages the home-screen habit counters.
package indicator

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/weekplan/internal/apperr"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/store"
)

const (
	// DefaultLabel names a freshly created indicator.
	DefaultLabel = "New Indicator"
	// DefaultDenominator is the target of a freshly created indicator.
	DefaultDenominator = 7
)

// Input is an indicator edit.
type Input struct {
	Label       string `json:"label"`
	Numerator   int    `json:"numerator"`
	Denominator int    `json:"denominator"`
}

// Validate implements validation.Validatable.
func (in Input) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Label, validation.Required, validation.Length(1, 64)),
	)
}

// Service wraps an IndicatorStore.
type Service struct {
	store store.IndicatorStore
}

// New creates a Service.
func New(st store.IndicatorStore) *Service {
	return &Service{store: st}
}

// List returns all indicators in display order.
func (s *Service) List(ctx context.Context) ([]models.Indicator, error) {
	out, err := s.store.ListIndicators(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Indicator{}
	}
	return out, nil
}

// Create appends a "New Indicator" at 0/7.
func (s *Service) Create(ctx context.Context) (models.Indicator, error) {
	n, err := s.store.CountIndicators(ctx)
	if err != nil {
		return models.Indicator{}, err
	}
	in := models.Indicator{
		ID:          uuid.NewString(),
		Label:       DefaultLabel,
		Denominator: DefaultDenominator,
		Position:    n,
	}
	if err := s.store.UpsertIndicator(ctx, in); err != nil {
		return models.Indicator{}, err
	}
	return in, nil
}

// Update replaces label and counts. A non-positive denominator becomes 1 and
// a negative numerator becomes 0.
func (s *Service) Update(ctx context.Context, id string, in Input) (models.Indicator, error) {
	if err := in.Validate(); err != nil {
		return models.Indicator{}, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	cur, err := s.store.GetIndicator(ctx, id)
	if err != nil {
		return models.Indicator{}, err
	}
	cur.Label = in.Label
	cur.Numerator = max(in.Numerator, 0)
	cur.Denominator = in.Denominator
	if cur.Denominator <= 0 {
		cur.Denominator = 1
	}
	if err := s.store.UpsertIndicator(ctx, cur); err != nil {
		return models.Indicator{}, err
	}
	return cur, nil
}

// Delete removes an indicator.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteIndicator(ctx, id)
}

// Seed inserts the default indicators when none exist and reports whether
// it did.
func (s *Service) Seed(ctx context.Context) (bool, error) {
	n, err := s.store.CountIndicators(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	for i, d := range models.DefaultIndicators {
		d.ID = uuid.NewString()
		d.Position = i
		if err := s.store.UpsertIndicator(ctx, d); err != nil {
			return false, err
		}
	}
	return true, nil
}
