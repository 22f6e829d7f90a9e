package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carbonguardian/carbonguardian/internal/alerting"
	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/api/response"
)

// AlertHandler handles threshold rule and alert endpoints.
type AlertHandler struct {
	svc *alerting.Service
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(svc *alerting.Service) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// CreateRule handles POST /v1/rules - register a threshold rule.
func (h *AlertHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var input models.CreateRuleRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	rule, err := h.svc.CreateRule(r.Context(), alerting.CreateRuleInput{
		Category:   input.Category,
		BuildingID: input.BuildingID,
		Metric:     input.Metric,
		Operator:   alerting.Operator(input.Operator),
		Threshold:  input.Threshold,
		Unit:       input.Unit,
		Severity:   alerting.Severity(input.Severity),
		Channels: alerting.Channels{
			SMS:    input.Channels.SMS,
			Email:  input.Channels.Email,
			System: input.Channels.System,
		},
	})
	if err != nil {
		if errors.Is(err, alerting.ErrInvalidOperator) {
			response.BadRequest(w, r, "unknown comparison operator", nil)
			return
		}
		response.InternalError(w, r, "failed to create rule")
		return
	}

	location := fmt.Sprintf("/v1/rules/%s", rule.ID)
	response.Created(w, r, location, models.NewRuleResponse(rule))
}

// ListRules handles GET /v1/rules.
func (h *AlertHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.ListRules(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list rules")
		return
	}

	resp := models.RuleListResponse{Rules: make([]models.RuleResponse, 0, len(rules))}
	for _, rule := range rules {
		resp.Rules = append(resp.Rules, models.NewRuleResponse(rule))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// SetRuleActive handles PUT /v1/rules/{ruleId}/active - toggle a rule.
func (h *AlertHandler) SetRuleActive(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")

	var input models.UpdateRuleActiveRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	rule, err := h.svc.SetRuleActive(r.Context(), ruleID, input.Active)
	if err != nil {
		if errors.Is(err, alerting.ErrRuleNotFound) {
			response.NotFound(w, r, "rule not found")
			return
		}
		response.InternalError(w, r, "failed to update rule")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewRuleResponse(rule))
}

// DeleteRule handles DELETE /v1/rules/{ruleId}.
func (h *AlertHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")
	if err := h.svc.DeleteRule(r.Context(), ruleID); err != nil {
		if errors.Is(err, alerting.ErrRuleNotFound) {
			response.NotFound(w, r, "rule not found")
			return
		}
		response.InternalError(w, r, "failed to delete rule")
		return
	}
	response.NoContent(w, r)
}

// ListAlerts handles GET /v1/alerts - list alerts newest first.
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	opts := alerting.AlertListOptions{
		Status:     alerting.AlertStatus(r.URL.Query().Get("status")),
		Severity:   alerting.Severity(r.URL.Query().Get("severity")),
		BuildingID: r.URL.Query().Get("buildingId"),
		Source:     alerting.AlertSource(r.URL.Query().Get("source")),
		Limit:      100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 500", nil)
			return
		}
		opts.Limit = limit
	}

	alerts, err := h.svc.ListAlerts(r.Context(), opts)
	if err != nil {
		response.InternalError(w, r, "failed to list alerts")
		return
	}

	resp := models.AlertListResponse{Alerts: make([]models.AlertResponse, 0, len(alerts))}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, models.NewAlertResponse(a))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// GetAlert handles GET /v1/alerts/{alertId}.
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")
	alert, err := h.svc.GetAlert(r.Context(), alertID)
	if err != nil {
		if errors.Is(err, alerting.ErrAlertNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		response.InternalError(w, r, "failed to load alert")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewAlertResponse(alert))
}

// TransitionAlert handles PUT /v1/alerts/{alertId}/status - move an alert
// through its lifecycle.
func (h *AlertHandler) TransitionAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")

	var input models.AlertTransitionRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	alert, err := h.svc.Transition(r.Context(), alertID, alerting.AlertStatus(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, alerting.ErrAlertNotFound):
			response.NotFound(w, r, "alert not found")
		case errors.Is(err, alerting.ErrInvalidTransition):
			response.Conflict(w, r, err.Error())
		default:
			response.InternalError(w, r, "failed to update alert")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewAlertResponse(alert))
}
