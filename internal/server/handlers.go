package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/bryan-cox/wageledger/internal/model"
	"github.com/bryan-cox/wageledger/internal/tariff"
	"github.com/bryan-cox/wageledger/internal/timesheet"
	"github.com/bryan-cox/wageledger/internal/wage"
)

// HeaderCalculationID carries the id of the calculation a response belongs to.
const HeaderCalculationID = "X-Calculation-ID"

// WagesResponse is the body of a successful wage calculation.
type WagesResponse struct {
	CalculationID string                `json:"calculation_id"`
	Months        []model.MonthlyReport `json:"months"`
}

// ValidateResponse is the body of a successful timesheet validation.
type ValidateResponse struct {
	CalculationID string `json:"calculation_id"`
	Shifts        int    `json:"shifts"`
}

// ErrorsResponse lists every invalid row of a rejected timesheet.
type ErrorsResponse struct {
	CalculationID string               `json:"calculation_id"`
	Errors        []timesheet.RowError `json:"errors"`
}

// CalculateWages reads a CSV timesheet from the body and returns the
// monthly wages.
func (h *Handler) CalculateWages(w http.ResponseWriter, r *http.Request) {
	id, shifts, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	months := wage.Calculate(shifts, h.tariff)
	if months == nil {
		months = []model.MonthlyReport{}
	}
	h.logger.Info("wages calculated", "calculation_id", id, "shifts", len(shifts), "months", len(months))
	writeJSON(w, http.StatusOK, WagesResponse{CalculationID: id, Months: months})
}

// ValidateTimesheet checks a CSV timesheet without calculating wages.
func (h *Handler) ValidateTimesheet(w http.ResponseWriter, r *http.Request) {
	id, shifts, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{CalculationID: id, Shifts: len(shifts)})
}

// GetTariff returns the tariff the server calculates with.
func (h *Handler) GetTariff(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tariff.ToFile(h.tariff))
}

// parseBody assigns a calculation id and parses the request body. When it
// returns false the response has already been written.
func (h *Handler) parseBody(w http.ResponseWriter, r *http.Request) (string, []model.Shift, bool) {
	id := uuid.NewString()
	w.Header().Set(HeaderCalculationID, id)

	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	text, err := timesheet.Read(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			problem(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return "", nil, false
		}
		h.logger.Warn("could not read request body", "calculation_id", id, "error", err)
		problem(w, http.StatusBadRequest, "Could not read request body")
		return "", nil, false
	}

	shifts, err := h.parser.Parse(text)
	if err != nil {
		var parseErr *timesheet.ParseError
		if errors.As(err, &parseErr) {
			h.logger.Info("timesheet rejected", "calculation_id", id, "invalid_rows", len(parseErr.Rows))
			writeJSON(w, http.StatusUnprocessableEntity, ErrorsResponse{CalculationID: id, Errors: parseErr.Rows})
			return "", nil, false
		}
		h.logger.Error("could not parse timesheet", "calculation_id", id, "error", err)
		problem(w, http.StatusInternalServerError, "Could not parse timesheet")
		return "", nil, false
	}
	return id, shifts, true
}
