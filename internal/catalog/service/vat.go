package service

import (
	"context"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/platform/httpkit"
)

const tableVatSettings = "vat_settings"

func (s *Service) GetActiveVat(ctx context.Context) (transport.VatResponse, error) {
	v, err := s.repo.GetActiveVat(ctx)
	if err != nil {
		return transport.VatResponse{}, err
	}
	return toVatResponse(v), nil
}

func (s *Service) ListVatHistory(ctx context.Context, req transport.VatHistoryRequest) (transport.ListResponse[transport.VatResponse], error) {
	page, pageSize := httpkit.NormalizePage(req.Page, req.PageSize)
	items, total, err := s.repo.ListVatHistory(ctx, httpkit.Offset(page, pageSize), pageSize)
	if err != nil {
		return transport.ListResponse[transport.VatResponse]{}, err
	}
	return listResponse(items, total, page, pageSize, toVatResponse), nil
}

// UpdateVat appends a new active VAT setting, deactivating the previous one.
// History rows are never edited.
func (s *Service) UpdateVat(ctx context.Context, actor audittransport.Actor, req transport.UpdateVatRequest) (transport.VatResponse, error) {
	current, previous, err := s.repo.SupersedeVat(ctx, req.Percentage, actor.UserID)
	if err != nil {
		return transport.VatResponse{}, err
	}

	resp := toVatResponse(current)
	var old any
	if previous != nil {
		old = toVatResponse(*previous)
	}
	s.mutated(ctx, actor, audittransport.ActionCreate, tableVatSettings, current.ID, old, resp)
	s.log.Info("vat updated", "id", current.ID, "percentage", current.Percentage.String())
	return resp, nil
}
