package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"evolve/backend/services/stations-service/internal/service"
)

// CalculatorHandlers serves the vehicle catalogue and cost calculators.
type CalculatorHandlers struct {
	svc    *service.CalculatorService
	logger *zap.Logger
}

// NewCalculatorHandlers builds handler set.
func NewCalculatorHandlers(svc *service.CalculatorService, logger *zap.Logger) *CalculatorHandlers {
	return &CalculatorHandlers{svc: svc, logger: logger}
}

// Years handles GET /api/years.
func (h *CalculatorHandlers) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.Years(r.Context())
	if err != nil {
		h.logger.Error("failed to list years", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list years")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"years": years})
}

// Manufacturers handles GET /api/manufacturers?year=.
func (h *CalculatorHandlers) Manufacturers(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := h.svc.Manufacturers(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		h.logger.Error("failed to list manufacturers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list manufacturers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"manufacturers": manufacturers})
}

// Models handles GET /api/models?year=&manufacturer=.
func (h *CalculatorHandlers) Models(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	names, err := h.svc.Models(r.Context(), q.Get("year"), q.Get("manufacturer"))
	if err != nil {
		h.logger.Error("failed to list models", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list models")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": names})
}

// FuelSavings handles POST /calculator/fuel-savings.
func (h *CalculatorHandlers) FuelSavings(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.FuelSavings(r.Context(), service.FuelSavingsInput{
		VehicleSelection: selection(fields),
		MPG:              fields["mpg"],
		GasPrice:         fields["gas_price"],
		AnnualMiles:      fields["annual_miles"],
		ElectricityCost:  fields["electricity_cost"],
	})
	if err != nil {
		h.writeCalculatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Level2 handles POST /calculator/level2.
func (h *CalculatorHandlers) Level2(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Level2(r.Context(), service.Level2Input{
		VehicleSelection: selection(fields),
		DailyMiles:       fields["daily_miles"],
		ChargingHours:    fields["charging_hours"],
		HomeVoltage:      fields["home_voltage"],
		UserID:           currentUserID(r),
	})
	if err != nil {
		h.writeCalculatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CalculatorHandlers) writeCalculatorError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, "invalid input", verr.Fields)
	case errors.Is(err, service.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, "The selected electric vehicle could not be found.")
	default:
		h.logger.Error("calculator failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "calculation failed")
	}
}

func selection(fields map[string]string) service.VehicleSelection {
	return service.VehicleSelection{
		ModelYear:    fields["model_year"],
		Manufacturer: fields["manufacturer"],
		Model:        fields["model"],
	}
}
