package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/editor"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
)

const maxDXFBytes = 5 << 20

type LayoutService interface {
	Templates(ctx context.Context, req layout.Request) ([]*domain.Layout, error)
	Categories() []layout.Category
	Generate(templateID string, req layout.Request) (*domain.Layout, error)
	Edit(base *domain.Layout, pricePerHour float64, actions []editor.Action) (*domain.Layout, error)
	ImportDXF(r io.Reader, pricePerHour float64) (*domain.Layout, error)
}

type LayoutHandler struct {
	layoutService LayoutService
}

func NewLayoutHandler(ls LayoutService) *LayoutHandler {
	return &LayoutHandler{layoutService: ls}
}

type generateRequest struct {
	TemplateID string `json:"templateId"`
	layout.Request
}

type editRequest struct {
	Layout       *domain.Layout  `json:"layout"`
	PricePerHour float64         `json:"pricePerHour"`
	Actions      []editor.Action `json:"actions"`
}

// POST /layouts/templates
func (h *LayoutHandler) Templates(c *gin.Context) {
	var req layout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	layouts, err := h.layoutService.Templates(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Could not generate templates")
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": layouts, "categories": h.layoutService.Categories()})
}

// GET /layouts/categories
func (h *LayoutHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, h.layoutService.Categories())
}

// POST /layouts/generate
func (h *LayoutHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.layoutService.Generate(req.TemplateID, req.Request)
	if err != nil {
		respondError(c, err, "Could not generate layout")
		return
	}
	c.JSON(http.StatusOK, l)
}

// POST /layouts/edit
func (h *LayoutHandler) Edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.layoutService.Edit(req.Layout, req.PricePerHour, req.Actions)
	if err != nil {
		respondError(c, err, "Could not edit layout")
		return
	}
	c.JSON(http.StatusOK, l)
}

// POST /layouts/import-dxf?pricePerHour=
// Accepts a multipart "file" field or a raw DXF body.
func (h *LayoutHandler) ImportDXF(c *gin.Context) {
	price := 0.0
	if raw := c.Query("pricePerHour"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price per hour"})
			return
		}
		price = p
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDXFBytes)
	var src io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "DXF file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read DXF file"})
			return
		}
		defer f.Close()
		src = f
	}

	l, err := h.layoutService.ImportDXF(src, price)
	if err != nil {
		respondError(c, err, "Could not import DXF")
		return
	}
	c.JSON(http.StatusOK, l)
}
