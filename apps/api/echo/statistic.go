package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core/statistic"
	exportsvc "github.com/trezcool/scorebook/services/export"
)

type statisticApi struct {
	svc      *statistic.Service
	validate *validator.Validate
}

func registerStatisticAPI(g *echo.Group, svc *statistic.Service, validate *validator.Validate) {
	api := statisticApi{svc: svc, validate: validate}

	sg := g.Group("/statistics")
	sg.GET("", api.view)
	sg.GET("/state", api.state)
	sg.POST("/reload", api.reload)
	sg.GET("/export", api.export)
	sg.GET("/classes", api.classes)

	// students
	sg.GET("/students/:id", api.detail)
	sg.POST("/students/:id/scores/seed", api.seedScores)
	sg.POST("/students/:id/edit", api.openEdit)

	// edit sessions
	eg := sg.Group("/edits/:sid")
	eg.GET("", api.edit)
	eg.PUT("/rates", api.stageRates)
	eg.PUT("/scores/:rowId", api.stageScore)
	eg.POST("/save", api.save)
	eg.DELETE("", api.closeEdit)
}

// partialSaveResponse is sent when some score rows could not be saved. The others were.
type partialSaveResponse struct {
	Error  string               `json:"error"`
	Failed []int64              `json:"failed"`
	Result statistic.SaveResult `json:"result"`
}

// Handlers

func (api *statisticApi) state(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.State())
}

func (api *statisticApi) reload(ctx echo.Context) error {
	if err := api.svc.Load(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "loading statistics")
	}
	return ctx.JSON(http.StatusOK, api.svc.State())
}

func (api *statisticApi) view(ctx echo.Context) error {
	q, err := bindViewFilter(ctx, api)
	if err != nil {
		return err
	}
	v, err := api.svc.View(q)
	if err != nil {
		return errors.Wrap(err, "projecting view")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *statisticApi) export(ctx echo.Context) error {
	q, err := bindViewFilter(ctx, api)
	if err != nil {
		return err
	}
	v, err := api.svc.View(q)
	if err != nil {
		return errors.Wrap(err, "projecting view")
	}

	var buf bytes.Buffer
	if err := exportsvc.WriteXLSX(&buf, v); err != nil {
		return errors.Wrap(err, "exporting view")
	}
	filename := fmt.Sprintf("statistics-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}

func (api *statisticApi) classes(ctx echo.Context) error {
	opts, err := api.svc.ClassOptions()
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *statisticApi) detail(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	d, err := api.svc.Detail(id)
	if err != nil {
		return errors.Wrap(err, "building detail")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *statisticApi) seedScores(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	created, err := api.svc.SeedScores(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "seeding scores")
	}
	return ctx.JSON(http.StatusCreated, created)
}

func (api *statisticApi) openEdit(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	snap, err := api.svc.OpenEdit(id)
	if err != nil {
		return errors.Wrap(err, "opening edit session")
	}
	return ctx.JSON(http.StatusCreated, snap)
}

func (api *statisticApi) edit(ctx echo.Context) error {
	snap, err := api.svc.Edit(ctx.Param("sid"))
	if err != nil {
		return errors.Wrap(err, "getting edit session")
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *statisticApi) stageRates(ctx echo.Context) error {
	var data statistic.EditRates
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditRates")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	snap, err := api.svc.StageRates(ctx.Param("sid"), data.Rates())
	if err != nil {
		return errors.Wrap(err, "staging rates")
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *statisticApi) stageScore(ctx echo.Context) error {
	rowID, err := paramID(ctx, "rowId")
	if err != nil {
		return err
	}
	var data statistic.EditScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditScore")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	snap, err := api.svc.StageScore(ctx.Param("sid"), rowID, data.Patch())
	if err != nil {
		return errors.Wrap(err, "staging score")
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *statisticApi) save(ctx echo.Context) error {
	res, err := api.svc.SaveEdit(ctx.Request().Context(), ctx.Param("sid"))

	var partial *statistic.PartialSaveError
	if errors.As(err, &partial) {
		return ctx.JSON(http.StatusMultiStatus, partialSaveResponse{
			Error:  partial.Error(),
			Failed: partial.FailedIDs(),
			Result: res,
		})
	}
	if err != nil {
		return errors.Wrap(err, "saving edit session")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *statisticApi) closeEdit(ctx echo.Context) error {
	if err := api.svc.CloseEdit(ctx.Param("sid")); err != nil {
		return errors.Wrap(err, "closing edit session")
	}
	return ctx.NoContent(http.StatusNoContent)
}
