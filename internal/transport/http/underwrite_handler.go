package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "uwcli/internal/errors"
	"uwcli/internal/pipeline"
)

// UnderwriteHandler serves the underwriting pipeline over HTTP.
type UnderwriteHandler struct {
	pipeline     *pipeline.Pipeline
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	metrics      *Metrics
}

// NewUnderwriteHandler creates an underwriting handler. Metrics may be nil
// in tests.
func NewUnderwriteHandler(p *pipeline.Pipeline, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, metrics *Metrics) *UnderwriteHandler {
	return &UnderwriteHandler{
		pipeline:     p,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "underwrite_handler")),
		errorHandler: errorHandler,
		metrics:      metrics,
	}
}

// Routes returns the underwriting routes.
func (h *UnderwriteHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Underwrite)
	return r
}

// Underwrite runs the full pipeline for one document set. Schema violations
// map to 422 with the offending document named; malformed request bodies
// map to 400.
func (h *UnderwriteHandler) Underwrite(w http.ResponseWriter, r *http.Request) {
	var input pipeline.Input
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(&input); err != nil {
		h.errorHandler.HandleError(w, r, validationError(err))
		return
	}

	result, err := h.pipeline.Run(r.Context(), input)
	if err != nil {
		h.observeRun(outcomeForError(err))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.observeRun("success")
	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

func (h *UnderwriteHandler) observeRun(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveRun(outcome)
	}
}

func outcomeForError(err error) string {
	if apierrors.IsSchemaError(err) {
		return "schema_violation"
	}
	return "error"
}

// validationError converts validator failures to the API error shape.
func validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: "failed validation rule: " + fe.Tag(),
		})
	}
	return apierrors.NewValidationErrors(fields)
}
