// Package services holds the console's application services built on the
// API client: fleet resource CRUD and avatar upload.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/fleetconsole/internal/client/client"
	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
)

// Doer sends one API request and returns its envelope.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, body any) (*models.Envelope, error)
}

// FleetService is list/get/create/update/delete over the fleet collections.
// Errors are returned as-is; the session is not consulted.
type FleetService interface {
	List(ctx context.Context, res models.Resource, q models.Query) (*models.Page, error)
	Get(ctx context.Context, res models.Resource, id string) (models.Record, error)
	Create(ctx context.Context, res models.Resource, rec models.Record) (models.Record, error)
	Update(ctx context.Context, res models.Resource, id string, rec models.Record) (models.Record, error)
	Delete(ctx context.Context, res models.Resource, id string) error
}

type fleetService struct {
	api Doer
}

func NewFleetService(api Doer) FleetService {
	return &fleetService{api: api}
}

func itemPath(res models.Resource, id string) string {
	return "/" + string(res) + "/" + url.PathEscape(id)
}

func (s *fleetService) List(ctx context.Context, res models.Resource, q models.Query) (*models.Page, error) {
	env, err := s.api.Do(ctx, http.MethodGet, "/"+string(res), q.Values(), nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", res, err)
	}

	page := &models.Page{Items: []models.Record{}}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &page.Items); err != nil {
			return nil, fmt.Errorf("list %s: %w: %v", res, client.ErrMalformedResponse, err)
		}
	}
	page.Total = env.Total
	if page.Total == 0 {
		page.Total = len(page.Items)
	}
	return page, nil
}

func (s *fleetService) record(ctx context.Context, method, path string, body any) (models.Record, error) {
	env, err := s.api.Do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	var rec models.Record
	if err := client.DecodeData(env, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *fleetService) Get(ctx context.Context, res models.Resource, id string) (models.Record, error) {
	rec, err := s.record(ctx, http.MethodGet, itemPath(res, id), nil)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", res, id, err)
	}
	return rec, nil
}

func (s *fleetService) Create(ctx context.Context, res models.Resource, rec models.Record) (models.Record, error) {
	out, err := s.record(ctx, http.MethodPost, "/"+string(res), rec)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", res, err)
	}
	return out, nil
}

func (s *fleetService) Update(ctx context.Context, res models.Resource, id string, rec models.Record) (models.Record, error) {
	out, err := s.record(ctx, http.MethodPut, itemPath(res, id), rec)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", res, id, err)
	}
	return out, nil
}

func (s *fleetService) Delete(ctx context.Context, res models.Resource, id string) error {
	if _, err := s.api.Do(ctx, http.MethodDelete, itemPath(res, id), nil, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", res, id, err)
	}
	return nil
}
