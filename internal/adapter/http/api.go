package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/trackota-etl/internal/analysis"
	"github.com/couchcryptid/trackota-etl/internal/dataset"
	"github.com/couchcryptid/trackota-etl/internal/domain"
)

// Analyzer runs the dataset extractions behind the API. Every method is
// fail-soft and returns a neutral result instead of an error.
type Analyzer interface {
	Datasets(ctx context.Context) dataset.Listing
	LapTimes(ctx context.Context, q analysis.Query) analysis.LapTimesResult
	Sections(ctx context.Context, q analysis.Query) analysis.SectionsResult
	Telemetry(ctx context.Context, q analysis.Query) analysis.TelemetryResult
	WeatherTrend(ctx context.Context, q analysis.Query) analysis.WeatherTrendResult
	Cars(ctx context.Context, q analysis.Query) analysis.CarsResult
	FastestLaps(ctx context.Context, q analysis.Query) []domain.RankedLap
	Recommendations(ctx context.Context, q analysis.Query) []domain.Recommendation
	Summary(ctx context.Context, q analysis.Query) analysis.Summary
}

var vehiclePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// queryParams are the query string parameters shared by the API routes.
type queryParams struct {
	Folder string `query:"folder" validate:"omitempty,max=512"`
	Car    string `query:"car" validate:"omitempty,max=32,vehicle"`
}

type apiHandler struct {
	analyzer Analyzer
	validate *validator.Validate
	logger   *slog.Logger
}

func newAPIHandler(analyzer Analyzer, logger *slog.Logger) *apiHandler {
	v := validator.New()
	//nolint:errcheck // tag name is static
	v.RegisterValidation("vehicle", func(fl validator.FieldLevel) bool {
		return vehiclePattern.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("query")
	})
	return &apiHandler{analyzer: analyzer, validate: v, logger: logger}
}

func (h *apiHandler) routes(r chi.Router) {
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/datasets", h.handleDatasets)
	r.Get("/charts/tyre-degradation", withQuery(h, h.analyzer.LapTimes))
	r.Get("/charts/sections", withQuery(h, h.analyzer.Sections))
	r.Get("/telemetry/series", withQuery(h, h.analyzer.Telemetry))
	r.Get("/weather/trend", withQuery(h, h.analyzer.WeatherTrend))
	r.Get("/race/cars", withQuery(h, h.analyzer.Cars))
	r.Get("/race/top3", withQuery(h, h.analyzer.FastestLaps))
	r.Get("/strategy/recommendations", withQuery(h, h.analyzer.Recommendations))
	r.Get("/strategy/summary", withQuery(h, h.analyzer.Summary))
}

func (h *apiHandler) handleDatasets(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.analyzer.Datasets(r.Context()))
}

// withQuery parses and validates the query string, then renders the result
// of fn as JSON.
func withQuery[T any](h *apiHandler, fn func(context.Context, analysis.Query) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := h.parseQuery(r)
		if err != nil {
			h.logger.Debug("rejected query", "path", r.URL.Path, "error", err)
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		render.JSON(w, r, fn(r.Context(), q))
	}
}

func (h *apiHandler) parseQuery(r *http.Request) (analysis.Query, error) {
	values := r.URL.Query()
	p := queryParams{
		Folder: strings.TrimSpace(values.Get("folder")),
		Car:    strings.TrimSpace(values.Get("car")),
	}
	if err := h.validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return analysis.Query{}, fieldError(fieldErrs[0])
		}
		return analysis.Query{}, err
	}
	return analysis.Query{Folder: p.Folder, Vehicle: p.Car}, nil
}

func fieldError(err validator.FieldError) error {
	switch err.Tag() {
	case "max":
		return fmt.Errorf("%s must be at most %s characters", err.Field(), err.Param())
	case "vehicle":
		return fmt.Errorf("%s must contain only letters, digits, '-' or '_'", err.Field())
	default:
		return fmt.Errorf("%s failed %s validation", err.Field(), err.Tag())
	}
}
