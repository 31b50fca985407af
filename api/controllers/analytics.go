package controllers

import (
	"net/http"
	"time"

	"github.com/brimhq/growth-engine/api/responses"
	"github.com/brimhq/growth-engine/api/validators"
	"github.com/brimhq/growth-engine/internal/analytics"
	pkgerrors "github.com/brimhq/growth-engine/pkg/errors"
	"github.com/brimhq/growth-engine/pkg/logger"
)

const (
	maxKPIDays     = 365
	maxTopLeads    = 100
	defaultTopRows = 10
)

// kpiParams parses the shared end_date / days query parameters. end_date
// defaults to tomorrow so that today's events fall inside the window.
func kpiParams(r *http.Request) (time.Time, int, error) {
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	end, err := validators.ParseQueryDate(r, "end_date", tomorrow)
	if err != nil {
		return time.Time{}, 0, err
	}
	days, err := validators.ParseQueryInt(r, "days", analytics.DefaultKPIDays, 1, maxKPIDays)
	if err != nil {
		return time.Time{}, 0, err
	}
	return end, days, nil
}

func kpiHandler(logg *logger.Logger, fn func(r *http.Request, end time.Time, days int) (analytics.KPIResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		end, days, err := kpiParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := fn(r, end, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "kpi query failed"))
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// QualifiedLeadsKPI handles GET /api/v1/analytics/kpis/qualified-leads.
func QualifiedLeadsKPI(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return kpiHandler(logg, func(r *http.Request, end time.Time, days int) (analytics.KPIResult, error) {
		return svc.QualifiedLeadsKPI(r.Context(), end, days)
	})
}

// NewActivationsKPI handles GET /api/v1/analytics/kpis/activations.
func NewActivationsKPI(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return kpiHandler(logg, func(r *http.Request, end time.Time, days int) (analytics.KPIResult, error) {
		return svc.NewActivationsKPI(r.Context(), end, days)
	})
}

// ConversionRateKPI handles GET /api/v1/analytics/kpis/conversion-rate.
func ConversionRateKPI(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return kpiHandler(logg, func(r *http.Request, end time.Time, days int) (analytics.KPIResult, error) {
		return svc.ConversionRateKPI(r.Context(), end, days)
	})
}

// EngagementKPI handles GET /api/v1/analytics/kpis/engagement.
func EngagementKPI(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return kpiHandler(logg, func(r *http.Request, end time.Time, days int) (analytics.KPIResult, error) {
		return svc.EngagementKPI(r.Context(), end, days)
	})
}

// ScoreDistribution handles GET /api/v1/analytics/score-distribution.
func ScoreDistribution(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		bins, err := svc.ScoreDistribution(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "distribution query failed"))
			return
		}
		responses.WriteSuccess(w, bins)
	}
}

// TopLeads handles GET /api/v1/analytics/top-leads.
func TopLeads(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		limit, err := validators.ParseQueryInt(r, "limit", defaultTopRows, 1, maxTopLeads)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		leads, err := svc.TopLeads(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "top leads query failed"))
			return
		}
		responses.WriteSuccess(w, leads)
	}
}

// ActivationFunnel handles GET /api/v1/analytics/funnel.
func ActivationFunnel(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		funnel, err := svc.ActivationFunnel(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "funnel query failed"))
			return
		}
		responses.WriteSuccess(w, funnel)
	}
}

// EmailPerformance handles GET /api/v1/analytics/email-performance.
func EmailPerformance(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		counts, err := svc.EmailPerformance(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "email performance query failed"))
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

// FunnelOverTime handles GET /api/v1/analytics/funnel-over-time.
func FunnelOverTime(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		end, days, err := kpiParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		series, err := svc.FunnelOverTime(ctx, end, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "funnel trend query failed"))
			return
		}
		responses.WriteSuccess(w, series)
	}
}

// LeadsTable handles GET /api/v1/analytics/leads-table.
func LeadsTable(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		table, err := svc.LeadsTable(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "leads table query failed"))
			return
		}
		responses.WriteSuccess(w, table)
	}
}
