package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inventory-backend/application/services"
	"inventory-backend/pkg/common"
	"inventory-backend/pkg/utils"
)

// KPIHandler serves the aggregate inventory metrics.
type KPIHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewKPIHandler creates a new KPI handler
func NewKPIHandler(service *services.ProductService, logger *zap.Logger) *KPIHandler {
	return &KPIHandler{
		service: service,
		logger:  logger,
	}
}

// GetKPIs handles GET /products/kpi. An empty collection yields zeroed
// metrics, never an error.
func (h *KPIHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.KPIs(r.Context())
	if err != nil {
		h.logger.Error("Failed to retrieve KPIs", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Response{
		Success:     true,
		Data:        kpis,
		GeneratedAt: utils.NowRFC3339(),
	})
}
