package main

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

// newServer serves the record collections of repo the way json-server serves a db.json file.
func newServer(repo school.Repository, logger core.Logger, logRequests bool) *echo.Echo {
	app := echo.New()
	app.HideBanner = true
	app.HTTPErrorHandler = errorHandler(logger)

	app.Pre(middleware.RemoveTrailingSlash())
	if logRequests {
		app.Use(middleware.Logger())
	}
	app.Use(middleware.CORS())

	api := recordApi{repo: repo}
	app.GET("/"+school.CollectionStudents, api.listStudents)
	app.GET("/"+school.CollectionSubjects, api.listSubjects)
	app.GET("/"+school.CollectionStudentScores, api.listStudentScores)
	app.GET("/"+school.CollectionClasses, api.listClasses)
	app.PATCH("/"+school.CollectionStudents+"/:id", api.patchStudent)
	app.PATCH("/"+school.CollectionStudentScores+"/:id", api.patchStudentScore)
	app.POST("/"+school.CollectionStudentScores, api.createStudentScore)
	return app
}

func errorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code := http.StatusInternalServerError
		var message interface{} = http.StatusText(code)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			code, message = origErr.Code, origErr.Message
		default:
			if origErr == school.ErrNotFound {
				code, message = http.StatusNotFound, origErr.Error()
			} else {
				logger.Error(err.Error(), err, map[string]interface{}{"path": ctx.Path()})
			}
		}

		if !ctx.Response().Committed {
			if err := ctx.JSON(code, echo.Map{"error": message}); err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

type recordApi struct {
	repo school.Repository
}

func paramID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}

func (api *recordApi) listStudents(ctx echo.Context) error {
	students, err := api.repo.ListStudents(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *recordApi) listSubjects(ctx echo.Context) error {
	subjects, err := api.repo.ListSubjects(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *recordApi) listStudentScores(ctx echo.Context) error {
	scores, err := api.repo.ListStudentScores(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *recordApi) listClasses(ctx echo.Context) error {
	classes, err := api.repo.ListClasses(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

// patchStudent accepts {"rates": {...}}; other fields are not editable.
func (api *recordApi) patchStudent(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data struct {
		Rates school.Rates `json:"rates"`
	}
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	st, err := api.repo.PatchStudentRates(ctx.Request().Context(), id, data.Rates.Clamp())
	if err != nil {
		return errors.Wrap(err, "patching student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *recordApi) patchStudentScore(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var patch school.ScorePatch
	if err := ctx.Bind(&patch); err != nil {
		return err
	}
	sc, err := api.repo.PatchStudentScore(ctx.Request().Context(), id, patch)
	if err != nil {
		return errors.Wrap(err, "patching student score")
	}
	return ctx.JSON(http.StatusOK, sc)
}

func (api *recordApi) createStudentScore(ctx echo.Context) error {
	var sc school.StudentScore
	if err := ctx.Bind(&sc); err != nil {
		return err
	}
	sc.ID = 0
	created, err := api.repo.CreateStudentScore(ctx.Request().Context(), sc)
	if err != nil {
		return errors.Wrap(err, "creating student score")
	}
	return ctx.JSON(http.StatusCreated, created)
}
