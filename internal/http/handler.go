package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/adapter/store"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/usecase"
)

// Handler serves models stored under a data directory.
type Handler struct {
	dataDir   string
	models    store.ModelReader
	validator *usecase.Validator
	sampler   *usecase.Sampler
	log       logrus.FieldLogger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// cacheEntry is the last check result for a model and profile set, valid
// while the schema file keeps its modification time.
type cacheEntry struct {
	modTime time.Time
	result  *usecase.Result
}

// NewHandler creates a new HTTP handler.
func NewHandler(dataDir string, models store.ModelReader, validator *usecase.Validator, sampler *usecase.Sampler, log logrus.FieldLogger) *Handler {
	return &Handler{
		dataDir:   dataDir,
		models:    models,
		validator: validator,
		sampler:   sampler,
		log:       log.WithField("component", "http"),
		cache:     make(map[string]cacheEntry),
	}
}

// DimensionInfo describes a dimension.
type DimensionInfo struct {
	Name        string `json:"name"`
	Length      int    `json:"length"`
	IsUnlimited bool   `json:"is_unlimited,omitempty"`
}

// AttributeInfo describes an attribute.
type AttributeInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Value     string `json:"value"`
	Separator string `json:"separator,omitempty"`
}

// VariableInfo describes a variable and its data.
type VariableInfo struct {
	Name       string          `json:"name"`
	Shape      string          `json:"shape"`
	Type       string          `json:"type"`
	DataShape  []int           `json:"data_shape,omitempty"`
	DataType   string          `json:"data_type,omitempty"`
	Attributes []AttributeInfo `json:"attributes"`
}

// ModelSummary is the response for a single model.
type ModelSummary struct {
	Name             string          `json:"name"`
	Dimensions       []DimensionInfo `json:"dimensions"`
	GlobalAttributes []AttributeInfo `json:"global_attributes"`
	Variables        []VariableInfo  `json:"variables"`
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListModels handles GET /v1/models.
func (h *Handler) ListModels(c *gin.Context) {
	entries, err := os.ReadDir(h.dataDir)
	if err != nil {
		h.log.WithError(err).Error("failed to read data directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read data directory"})
		return
	}

	models := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), domain.NcmlSuffix); ok {
			models = append(models, base)
		}
	}
	sort.Strings(models)

	c.JSON(http.StatusOK, gin.H{
		"models": models,
		"count":  len(models),
	})
}

// GetModel handles GET /v1/models/:name.
func (h *Handler) GetModel(c *gin.Context) {
	name, ok := h.modelName(c)
	if !ok {
		return
	}
	m, err := h.models.Read(filepath.Join(h.dataDir, name))
	if err != nil {
		h.fail(c, name, err)
		return
	}
	c.JSON(http.StatusOK, summarize(name, m))
}

// CheckModel handles GET /v1/models/:name/check?profiles=default,station.
// One result is cached per model and profile set; it is replaced when the
// schema modification time changes.
func (h *Handler) CheckModel(c *gin.Context) {
	name, ok := h.modelName(c)
	if !ok {
		return
	}
	opts, err := usecase.CheckOptionsFromProfiles(strings.Split(c.Query("profiles"), ","))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	base := filepath.Join(h.dataDir, name)
	info, err := os.Stat(base + domain.NcmlSuffix)
	if err != nil {
		h.fail(c, name, domain.NotFound(base+domain.NcmlSuffix, err))
		return
	}
	key := name + "|" + opts.String()

	h.mu.Lock()
	entry, hit := h.cache[key]
	h.mu.Unlock()
	res := entry.result
	cached := hit && entry.modTime.Equal(info.ModTime())
	if !cached {
		m, err := h.models.Read(base)
		if err != nil {
			h.fail(c, name, err)
			return
		}
		res, err = h.validator.Validate(c.Request.Context(), m, base, "", opts)
		if err != nil {
			h.log.WithError(err).WithField("model", name).Error("check failed to run")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		h.mu.Lock()
		h.cache[key] = cacheEntry{modTime: info.ModTime(), result: res}
		h.mu.Unlock()
	}

	c.JSON(http.StatusOK, gin.H{
		"model":  name,
		"ok":     res.OK(),
		"cached": cached,
		"result": res,
	})
}

// SampleModel handles
// GET /v1/models/:name/sample?var=temp&lat=45.2&lon=7.1&time=0&height=0.
func (h *Handler) SampleModel(c *gin.Context) {
	name, ok := h.modelName(c)
	if !ok {
		return
	}

	var q struct {
		Variable  string   `form:"var" binding:"required"`
		Latitude  *float64 `form:"lat" binding:"required"`
		Longitude *float64 `form:"lon" binding:"required"`
		Time      int      `form:"time"`
		Height    int      `form:"height"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.models.Read(filepath.Join(h.dataDir, name))
	if err != nil {
		h.fail(c, name, err)
		return
	}
	req := usecase.SampleRequest{
		Variable:  q.Variable,
		Time:      q.Time,
		Height:    q.Height,
		Latitude:  *q.Latitude,
		Longitude: *q.Longitude,
	}
	v, err := h.sampler.Sample(m, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"model":    name,
		"variable": req.Variable,
		"time":     req.Time,
		"height":   req.Height,
		"lat":      req.Latitude,
		"lon":      req.Longitude,
		"value":    v,
	})
}

// modelName returns the :name parameter, rejecting anything that is not a
// plain file name.
func (h *Handler) modelName(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid model name %q", name)})
		return "", false
	}
	return name, true
}

func (h *Handler) fail(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("model %q not found", name)})
	case errors.Is(err, domain.ErrMalformedInput),
		errors.Is(err, domain.ErrVariableCountMismatch),
		errors.Is(err, domain.ErrUnsupportedRank),
		errors.Is(err, domain.ErrUnknownType):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.WithError(err).WithField("model", name).Error("failed to read model")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func summarize(name string, m *domain.Model) ModelSummary {
	s := ModelSummary{
		Name:             name,
		Dimensions:       make([]DimensionInfo, len(m.Dimensions)),
		GlobalAttributes: attributes(m.GlobalAttributes),
		Variables:        make([]VariableInfo, len(m.Variables)),
	}
	for i, d := range m.Dimensions {
		s.Dimensions[i] = DimensionInfo{Name: d.Name, Length: d.Length, IsUnlimited: d.IsUnlimited}
	}
	for i, v := range m.Variables {
		info := VariableInfo{Name: v.Name, Shape: v.Shape, Type: v.Type, Attributes: attributes(v.Attributes)}
		if v.Data != nil {
			info.DataShape = v.Data.Shape()
			info.DataType = v.Data.DType().String()
		}
		s.Variables[i] = info
	}
	return s
}

func attributes(attrs []domain.Attribute) []AttributeInfo {
	out := make([]AttributeInfo, len(attrs))
	for i, a := range attrs {
		out[i] = AttributeInfo{Name: a.Name, Type: a.Type, Value: a.Value, Separator: a.Separator}
	}
	return out
}
