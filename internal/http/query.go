package api

import (
	"math"
	"net/http"
	"strconv"

	"storefront/internal/platform/apperr"
	"storefront/internal/platform/paging"
)

func invalidParam(name string, err error) error {
	return apperr.BadRequest("PARAMETRO_INVALIDO", name+" invalido", err)
}

func pagingParams(r *http.Request) (paging.Params, error) {
	var p paging.Params
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, invalidParam("page", err)
		}
		p.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, invalidParam("limit", err)
		}
		p.Limit = n
	}
	return p.Normalize(), nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, invalidParam(name, err)
	}
	return &b, nil
}

func queryFloat(r *http.Request, name string) (*float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalidParam(name, err)
	}
	return &f, nil
}

func queryID(r *http.Request, name string) (*int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, invalidParam(name, err)
	}
	return &id, nil
}
