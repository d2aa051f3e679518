package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/notedesk/notedesk/internal/handler/dto"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/service"
)

// TenantDirectory lists and registers tenants.
type TenantDirectory interface {
	List(ctx context.Context) ([]*model.Tenant, error)
	Register(ctx context.Context, input service.RegisterCompanyInput) (*model.Tenant, error)
}

// CentralHandler serves the routes of the central domains.
type CentralHandler struct {
	tenants TenantDirectory
	errors  *Errors
	logger  *slog.Logger
}

// NewCentralHandler creates a new CentralHandler.
func NewCentralHandler(tenants TenantDirectory, errs *Errors, logger *slog.Logger) *CentralHandler {
	return &CentralHandler{tenants: tenants, errors: errs, logger: logger}
}

// ListTenants handles GET /tenants.
func (h *CentralHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTenantListResponse(tenants))
}

// RegisterCompany handles POST /register-company.
func (h *CentralHandler) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.BadJSON(w)
		return
	}

	tenant, err := h.tenants.Register(r.Context(), service.RegisterCompanyInput{
		CompanyName: req.CompanyName,
		Domain:      req.Domain,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.Info("tenant_registered",
		"tenant_id", tenant.ID,
		"domains", tenant.Hostnames(),
	)

	writeJSON(w, http.StatusCreated, dto.RegisterCompanyResponse{
		Message: "Tenant registered successfully",
		Tenant:  dto.ToTenantResponse(tenant),
	})
}
