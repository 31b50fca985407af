package controllers

import (
	"net/http"

	"github.com/brimhq/growth-engine/api/responses"
	"github.com/brimhq/growth-engine/api/validators"
	"github.com/brimhq/growth-engine/internal/leads"
	"github.com/brimhq/growth-engine/internal/scoring"
	pkgerrors "github.com/brimhq/growth-engine/pkg/errors"
	"github.com/brimhq/growth-engine/pkg/logger"
)

type scoreRequest struct {
	scoring.CompanyInput
	Model string `json:"model,omitempty"`
}

type batchScoreRequest struct {
	// Only the list shape is validated here; a company invalid enough to
	// fail scoring is skipped in the background with a warning.
	Companies []scoring.CompanyInput `json:"companies" validate:"required,min=1"`
	Model     string                 `json:"model,omitempty"`
}

// ScoreLead handles POST /api/v1/leads/score.
func ScoreLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req scoreRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		model, err := parseModel(req.Model)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Score(ctx, req.CompanyInput, model)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scoring failed"))
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BatchScoreLeads handles POST /api/v1/leads/batch-score. The response is an
// acknowledgment; processing continues in the background.
func BatchScoreLeads(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req batchScoreRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		model, err := parseModel(req.Model)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ack, err := svc.BatchScore(ctx, req.Companies, model)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid batch"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, ack)
	}
}
