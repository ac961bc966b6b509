package http

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/auth"
	"github.com/yfgao/invoice-extract/internal/classify"
	"github.com/yfgao/invoice-extract/internal/export"
	"github.com/yfgao/invoice-extract/internal/models"
	"github.com/yfgao/invoice-extract/internal/repository"
	"github.com/yfgao/invoice-extract/internal/service"
)

// Handlers bundles the HTTP request handlers and their collaborators.
type Handlers struct {
	authService    *auth.Service
	invoiceService *service.InvoiceService
	migrator       *classify.Migrator
	exporter       *export.Exporter
	configs        *repository.ConfigRepository
	logs           *repository.OperationLogRepository
	uploadDir      string
	logger         *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(
	authService *auth.Service,
	invoiceService *service.InvoiceService,
	migrator *classify.Migrator,
	exporter *export.Exporter,
	configs *repository.ConfigRepository,
	logs *repository.OperationLogRepository,
	uploadDir string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		authService:    authService,
		invoiceService: invoiceService,
		migrator:       migrator,
		exporter:       exporter,
		configs:        configs,
		logs:           logs,
		uploadDir:      uploadDir,
		logger:         logger,
	}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "invoice-extract",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.authService.VerifyUser(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	h.logs.Log(user.ID, "用户登录", fmt.Sprintf("用户 %s 登录系统", user.Username), c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// AuthMiddleware validates the bearer token and stores the user identity.
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := h.authService.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

// ExtractInvoices accepts a multipart upload of PDF files, materializes
// them into a per-request staging folder and processes each one. One record
// is returned per uploaded file; per-file failures never abort the batch.
func (h *Handlers) ExtractInvoices(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	staging, err := os.MkdirTemp(h.uploadDir, "batch_*")
	if err != nil {
		h.logger.Error("Failed to create upload staging dir", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage uploads"})
		return
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			h.logger.Warn("Failed to remove upload staging dir",
				zap.String("dir", staging),
				zap.Error(err))
		}
	}()

	paths := make([]string, 0, len(files))
	for _, file := range files {
		dst := filepath.Join(staging, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			h.logger.Warn("Failed to save uploaded file",
				zap.String("file", file.Filename),
				zap.Error(err))
			continue
		}
		paths = append(paths, dst)
	}

	enrich := service.Enrichment{
		AuditMonth:   c.PostForm("audit_month"),
		BusinessUnit: c.PostForm("business_unit"),
		Project:      c.PostForm("project"),
	}

	records := h.invoiceService.ProcessBatch(paths, enrich, userID(c))
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ClassifyFolder runs the two-phase batch migration over an operator
// supplied folder.
func (h *Handlers) ClassifyFolder(c *gin.Context) {
	var req struct {
		SourceFolder string `json:"source_folder" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_folder is required"})
		return
	}

	staging, err := h.migrator.ClassifyBatch(req.SourceFolder)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.migrator.MergeToOutput(staging); err != nil {
		h.logger.Error("Merge phase failed", zap.String("staging", staging), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   err.Error(),
			"staging": staging,
		})
		return
	}

	h.logs.Log(userID(c), "发票分类", fmt.Sprintf("分类文件夹 %s", req.SourceFolder), c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"output": h.migrator.OutputDir()})
}

// ListInvoices returns the caller's recent invoices.
func (h *Handlers) ListInvoices(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		days = 30
	}

	invoices, err := h.invoiceService.ListByUser(userID(c), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invoices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// GetStatistics returns the caller's aggregate numbers.
func (h *Handlers) GetStatistics(c *gin.Context) {
	stats, err := h.invoiceService.Statistics(userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type exportRequest struct {
	Records []*models.ExtractionRecord `json:"records" binding:"required"`
}

// ExportInvoices serializes the posted records in the requested format.
func (h *Handlers) ExportInvoices(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records are required"})
		return
	}

	format := c.DefaultQuery("format", "excel")
	switch format {
	case "excel":
		data, err := h.exporter.ToExcel(req.Records)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="发票数据.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.exporter.ToCSV(req.Records)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="发票数据.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "json":
		data, err := h.exporter.ToJSON(req.Records)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + format})
	}
}

// GetSystemConfig returns the system configuration table.
func (h *Handlers) GetSystemConfig(c *gin.Context) {
	config, err := h.configs.SystemConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}
	c.JSON(http.StatusOK, config)
}

// GetMenuFunctions returns the active dashboard menu entries.
func (h *Handlers) GetMenuFunctions(c *gin.Context) {
	items, err := h.configs.MenuFunctions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": items})
}
