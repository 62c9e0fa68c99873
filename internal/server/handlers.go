package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/office-tracker/internal/attendance"
	"github.com/username/office-tracker/internal/daybook"
	"github.com/username/office-tracker/internal/export"
	"github.com/username/office-tracker/internal/model"
	"github.com/username/office-tracker/pkg/dateutil"
)

// maxImportBytes caps import payload size
const maxImportBytes = 4 << 20

// Handler exposes the attendance operations surface over HTTP
type Handler struct {
	manager *daybook.Manager
	appName string
	logger  *zap.Logger
}

// NewHandler constructs the HTTP handler adapter
func NewHandler(manager *daybook.Manager, appName string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{manager: manager, appName: appName, logger: logger}
}

// dayView is the JSON shape of one day record
type dayView struct {
	Date        string       `json:"date"`
	Status      model.Status `json:"status"`
	IsHoliday   bool         `json:"is_holiday"`
	HolidayName string       `json:"holiday_name"`
	Notes       string       `json:"notes"`
}

func toDayViews(days []model.DayRecord) []dayView {
	views := make([]dayView, 0, len(days))
	for _, day := range days {
		views = append(views, dayView{
			Date:        dateutil.FormatDate(day.Date),
			Status:      day.Status,
			IsHoliday:   day.IsHoliday,
			HolidayName: day.HolidayName,
			Notes:       day.Notes,
		})
	}
	return views
}

// GetMonth returns the month's day records and the derived summary.
// Storage failures degrade to an empty month so the caller stays usable.
func (h *Handler) GetMonth(c *gin.Context) {
	owner := c.Param("owner")
	year, month, ok := h.monthParams(c)
	if !ok {
		return
	}

	days, settings, err := h.manager.MonthView(c.Request.Context(), owner, year, month)
	if err != nil {
		h.logger.Error("failed to load month", zap.String("owner", owner), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"days":    []dayView{},
			"summary": attendance.ComputeSummary(nil, settings),
			"warning": "storage unavailable, showing empty month",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":     toDayViews(days),
		"summary":  attendance.ComputeSummary(days, settings),
		"settings": settings,
	})
}

// PutDay merges a partial day edit
func (h *Handler) PutDay(c *gin.Context) {
	owner := c.Param("owner")
	date, err := dateutil.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patch model.DayPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.manager.UpsertDay(c.Request.Context(), owner, date, patch); err != nil {
		h.logger.Error("failed to update day", zap.String("owner", owner), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update day"})
		return
	}

	c.Status(http.StatusNoContent)
}

type vacationRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// PostVacation bulk-sets VACATION over an inclusive date range
func (h *Handler) PostVacation(c *gin.Context) {
	owner := c.Param("owner")

	var req vacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end dates are required"})
		return
	}

	start, err := dateutil.ParseDate(req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := dateutil.ParseDate(req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	affected, err := h.manager.BulkSetVacation(c.Request.Context(), owner, start, end)
	if err != nil {
		if errorsIsInvalidRange(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed to set vacation", zap.String("owner", owner), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set vacation range"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"affected": affected})
}

// GetSettings returns the owner's settings, creating defaults on first access
func (h *Handler) GetSettings(c *gin.Context) {
	owner := c.Param("owner")

	settings, err := h.manager.GetSettings(c.Request.Context(), owner)
	if err != nil {
		h.logger.Warn("settings unavailable, returning defaults",
			zap.String("owner", owner), zap.Error(err))
	}
	c.JSON(http.StatusOK, settings)
}

// PutSettings merges a partial settings edit
func (h *Handler) PutSettings(c *gin.Context) {
	owner := c.Param("owner")

	var patch model.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.manager.UpsertSettings(c.Request.Context(), owner, patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportMonth streams the month as a versioned JSON backup file
func (h *Handler) ExportMonth(c *gin.Context) {
	owner := c.Param("owner")
	year, month, ok := h.monthParams(c)
	if !ok {
		return
	}

	days, settings, err := h.manager.MonthView(c.Request.Context(), owner, year, month)
	if err != nil {
		h.logger.Error("failed to load month for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load month"})
		return
	}

	summary := attendance.ComputeSummary(days, settings)
	data, err := export.SerializeMonth(days, settings, summary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize month"})
		return
	}

	filename := export.Filename(h.appName, year, month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// ImportMonth parses an export document and applies its days to the
// store, overwriting existing statuses for the covered dates
func (h *Handler) ImportMonth(c *gin.Context) {
	owner := c.Param("owner")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	parsed, err := export.DeserializeMonth(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied := 0
	for _, day := range parsed.Days {
		day := day
		patch := model.DayPatch{
			Status:      &day.Status,
			IsHoliday:   &day.IsHoliday,
			HolidayName: &day.HolidayName,
			Notes:       &day.Notes,
		}
		if err := h.manager.UpsertDay(c.Request.Context(), owner, day.Date, patch); err != nil {
			h.logger.Error("import stopped",
				zap.String("owner", owner),
				zap.String("date", dateutil.FormatDate(day.Date)),
				zap.Int("applied", applied),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "import failed",
				"applied": applied,
			})
			return
		}
		applied++
	}

	c.JSON(http.StatusOK, gin.H{"applied": applied, "version": parsed.Version})
}

// monthParams parses and validates the :year/:month path segments
func (h *Handler) monthParams(c *gin.Context) (int, time.Month, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return 0, 0, false
	}
	monthNum, err := strconv.Atoi(c.Param("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, must be 1-12"})
		return 0, 0, false
	}
	return year, time.Month(monthNum), true
}

func errorsIsInvalidRange(err error) bool {
	return errors.Is(err, daybook.ErrInvalidRange)
}
