package service

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/brocante/brocante-api/internal/model"
)

// ParseOfferQuery turns search query parameters into an OfferQuery.
//
// Unknown sort values fall back to insertion order. A page below 1 or
// unparseable becomes 1. An absent, unparseable or non-positive limit means
// no limit, in which case the page has no effect.
func ParseOfferQuery(v url.Values) (model.OfferQuery, error) {
	q := model.OfferQuery{
		Filter: model.OfferFilter{Title: v.Get("title")},
		Page:   1,
	}

	var err error
	if q.Filter.PriceMin, err = parseBound(v, "priceMin"); err != nil {
		return model.OfferQuery{}, err
	}
	if q.Filter.PriceMax, err = parseBound(v, "priceMax"); err != nil {
		return model.OfferQuery{}, err
	}

	switch sort := model.OfferSort(v.Get("sort")); sort {
	case model.SortPriceAsc, model.SortPriceDesc:
		q.Sort = sort
	}

	if page, err := strconv.Atoi(strings.TrimSpace(v.Get("page"))); err == nil && page > 1 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(v.Get("limit"))); err == nil && limit > 0 {
		q.Limit = limit
	}

	// Keep (page-1)*limit within int range.
	if q.Limit > 0 && q.Page-1 > math.MaxInt32/q.Limit {
		q.Page = math.MaxInt32/q.Limit + 1
	}

	return q, nil
}

func parseBound(v url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &Error{Kind: KindOperationFailed, Message: key + " must be a number"}
	}
	return &f, nil
}
