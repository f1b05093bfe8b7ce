package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core/statistic"
)

// paramID reads a numeric path param. Anything else cannot name a record.
func paramID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// bindViewFilter reads the `search`, `class` and `ordering` query params, eg: ?class=10&ordering=-hk1
func bindViewFilter(ctx echo.Context, api *statisticApi) (statistic.Query, error) {
	var data statistic.ViewFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &data); err != nil {
		return statistic.Query{}, errors.Wrap(err, "binding to ViewFilter")
	}
	if err := data.Validate(api.validate); err != nil {
		return statistic.Query{}, err
	}
	return data.Query(), nil
}
