package controllers

import (
	"net/http"

	"github.com/brimhq/growth-engine/api/responses"
	"github.com/brimhq/growth-engine/api/validators"
	"github.com/brimhq/growth-engine/internal/leads"
	"github.com/brimhq/growth-engine/pkg/enums"
	pkgerrors "github.com/brimhq/growth-engine/pkg/errors"
	"github.com/brimhq/growth-engine/pkg/logger"
)

// LogActivationEvent handles POST /api/v1/activation/log-event.
func LogActivationEvent(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req leads.ActivationInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.LogActivation(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record activation event"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "logged"})
	}
}

func parseModel(raw string) (enums.ScoringModel, error) {
	model, err := enums.ParseScoringModel(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	return model, nil
}
