package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"docstage/internal/domain"
)

type endpoints struct {
	list, item string
	// typed adds ?type=<kind> to list and detail requests
	typed bool
	// typedDelete adds ?type=<kind> to delete requests
	typedDelete bool
}

func endpointsFor(kind domain.Kind) (endpoints, error) {
	switch kind {
	case domain.KindLoaded:
		return endpoints{list: "/documents", item: "/documents/{name}", typed: true}, nil
	case domain.KindChunked:
		return endpoints{list: "/documents", item: "/documents/{name}", typed: true, typedDelete: true}, nil
	case domain.KindParsed:
		return endpoints{list: "/parsed-docs", item: "/parsed-docs/{name}"}, nil
	}
	return endpoints{}, fmt.Errorf("the service keeps no registry for %s documents", kind)
}

func (c *Client) List(ctx context.Context, kind domain.Kind) ([]domain.DocumentSummary, error) {
	ep, err := endpointsFor(kind)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, ep.list, func(r *resty.Request) {
		if ep.typed {
			r.SetQueryParam("type", string(kind))
		}
	})
	if err != nil {
		return nil, err
	}
	return decodeSummaries(gjson.ParseBytes(resp.Body()), kind), nil
}

func (c *Client) Detail(ctx context.Context, name string, kind domain.Kind) (*domain.Document, error) {
	ep, err := endpointsFor(kind)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, ep.item, func(r *resty.Request) {
		r.SetPathParam("name", name)
		if ep.typed {
			r.SetQueryParam("type", string(kind))
		}
	})
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
			te.Err = domain.ErrNotFound
		}
		return nil, err
	}

	result := unwrapResult(resp.Body(), "")
	result.Name = name
	return &domain.Document{DocumentSummary: result.Summary(kind), Result: result}, nil
}

// Delete treats a 404 as success: the artifact is gone either way.
func (c *Client) Delete(ctx context.Context, name string, kind domain.Kind) error {
	ep, err := endpointsFor(kind)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodDelete, ep.item, func(r *resty.Request) {
		r.SetPathParam("name", name)
		if ep.typedDelete {
			r.SetQueryParam("type", string(kind))
		}
	})
	var te *domain.TransportError
	if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
		c.log.Debug("delete of absent artifact", zap.String("document", name), zap.String("kind", string(kind)))
		return nil
	}
	return err
}
