package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/repository"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves catalog metadata used to populate filter controls
type CatalogHandler struct {
	store *repository.PhoneStore
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(store *repository.PhoneStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// Companies handles GET /api/v1/companies
func (h *CatalogHandler) Companies(c *gin.Context) {
	companies, err := h.store.Companies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list companies: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// FilterRanges handles GET /api/v1/filters/ranges
func (h *CatalogHandler) FilterRanges(c *gin.Context) {
	ranges, err := h.store.Ranges(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load filter ranges: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, ranges)
}

// Phones handles GET /api/v1/phones
func (h *CatalogHandler) Phones(c *gin.Context) {
	names, err := h.store.ModelNames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list phones: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phones": names})
}

// Compare handles POST /api/v1/compare
func (h *CatalogHandler) Compare(c *gin.Context) {
	var req model.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	records, err := h.store.FetchByNames(c.Request.Context(), req.Phones)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Compare failed: " + err.Error()})
		return
	}

	result := model.QueryResult{Records: records}
	c.JSON(http.StatusOK, gin.H{
		"records": result.UniqueByModel(model.MaxCompareRecords),
	})
}
