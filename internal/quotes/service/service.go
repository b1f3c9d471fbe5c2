// Package service prices calculator submissions and stores them as leads.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"inspection_portal/internal/events"
	leadstransport "inspection_portal/internal/leads/transport"
	"inspection_portal/internal/pricing"
	"inspection_portal/internal/quotes/transport"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/phone"
	"inspection_portal/platform/sanitize"
)

const defaultSource = "calculator"

// ConfigProvider returns the active pricing configuration.
type ConfigProvider interface {
	PricingConfig(ctx context.Context) (pricing.Config, error)
}

// LeadWriter stores a priced submission.
type LeadWriter interface {
	CreateLead(ctx context.Context, lead leadstransport.NewLead) (leadstransport.LeadResponse, error)
}

// Service computes quotes against the live configuration snapshot.
type Service struct {
	config   ConfigProvider
	leads    LeadWriter
	phones   *phone.Normalizer
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new quotes service.
func New(config ConfigProvider, leads LeadWriter, phones *phone.Normalizer, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{config: config, leads: leads, phones: phones, eventBus: eventBus, log: log}
}

// Preview prices a submission without persisting it.
func (s *Service) Preview(ctx context.Context, req transport.PreviewQuoteRequest) (transport.QuoteResponse, error) {
	quote, err := s.compute(ctx, req.QuoteInput)
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	s.log.WithContext(ctx).QuoteComputed(quote.PackageName, quote.TotalArea.String(), quote.FinalPrice.String(), false)
	return quote, nil
}

// Submit prices a submission, stores it as a lead and announces it.
// Identical submissions produce separate leads.
func (s *Service) Submit(ctx context.Context, req transport.SubmitQuoteRequest, meta httpkit.RequestMeta) (transport.SubmitQuoteResponse, error) {
	phoneE164, err := s.phones.Normalize(req.Phone)
	if err != nil {
		return transport.SubmitQuoteResponse{}, apperr.InvalidField("phone", "must be a valid phone number")
	}

	quote, err := s.compute(ctx, req.QuoteInput)
	if err != nil {
		return transport.SubmitQuoteResponse{}, err
	}

	breakdown, err := json.Marshal(quote.Breakdown)
	if err != nil {
		return transport.SubmitQuoteResponse{}, fmt.Errorf("encode breakdown: %w", err)
	}

	source := sanitize.Text(req.Source)
	if source == "" {
		source = defaultSource
	}

	lead, err := s.leads.CreateLead(ctx, leadstransport.NewLead{
		FullName:               sanitize.Text(req.FullName),
		Email:                  sanitize.Email(req.Email),
		Phone:                  phoneE164,
		CityID:                 req.CityID,
		CityName:               quote.CityName,
		NeighborhoodID:         req.NeighborhoodID,
		NeighborhoodName:       quote.NeighborhoodName,
		PackageID:              req.PackageID,
		PackageName:            quote.PackageName,
		PropertyAgeKey:         req.PropertyAge,
		PurposeKey:             req.Purpose,
		LandArea:               quote.LandArea,
		CoveredArea:            quote.CoveredArea,
		TotalArea:              quote.TotalArea,
		BasePrice:              quote.BasePrice,
		AgeMultiplier:          quote.AgeMultiplier,
		PurposeMultiplier:      quote.PurposeMultiplier,
		NeighborhoodMultiplier: quote.NeighborhoodMultiplier,
		PriceBeforeVAT:         quote.PriceBeforeVAT,
		VATPercentage:          quote.VATPercentage,
		VATAmount:              quote.VATAmount,
		FinalPrice:             quote.FinalPrice,
		Breakdown:              breakdown,
		Source:                 source,
		IPAddress:              meta.IP,
		UserAgent:              meta.UserAgent,
	})
	if err != nil {
		return transport.SubmitQuoteResponse{}, err
	}

	s.log.WithContext(ctx).QuoteComputed(quote.PackageName, quote.TotalArea.String(), quote.FinalPrice.String(), true)

	s.eventBus.Publish(ctx, events.LeadSubmitted{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		FullName:     lead.FullName,
		Email:        lead.Email,
		Phone:        lead.Phone,
		PackageName:  lead.PackageName,
		CityName:     lead.CityName,
		Neighborhood: lead.NeighborhoodName,
		TotalArea:    quote.TotalArea.String(),
		FinalPrice:   quote.FinalPrice.String(),
	})

	return transport.SubmitQuoteResponse{LeadID: lead.ID, Quote: quote}, nil
}

func (s *Service) compute(ctx context.Context, in transport.QuoteInput) (transport.QuoteResponse, error) {
	cfg, err := s.config.PricingConfig(ctx)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	breakdown, err := pricing.Compute(pricing.Input{
		PackageID:      in.PackageID,
		CityID:         in.CityID,
		NeighborhoodID: in.NeighborhoodID,
		PropertyAge:    in.PropertyAge,
		Purpose:        in.Purpose,
		LandArea:       in.LandArea,
		CoveredArea:    in.CoveredArea,
	}, cfg)
	if err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			return transport.QuoteResponse{}, apperr.InvalidField(verr.Field, verr.Message)
		}
		return transport.QuoteResponse{}, fmt.Errorf("compute quote: %w", err)
	}

	return transport.QuoteResponse{
		Breakdown:        breakdown,
		CityName:         cfg.Cities[in.CityID],
		NeighborhoodName: cfg.Neighborhoods[in.NeighborhoodID].Name,
	}, nil
}
