package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-patrol/layout"
	"go-patrol/layout/pdf"
	"go-patrol/layout/text"
	"go-patrol/types"
)

// GenerateReportHandler lays out a report and returns it as a PDF download,
// or as a plain text preview with ?format=text. An empty body requests every
// section for all recorded months.
func GenerateReportHandler(c *gin.Context, svc PatrolService, memo MemoDefaults) {
	cfg := types.ReportConfig{
		SelectedMonth:   types.AllPeriods,
		SelectedYear:    types.AllPeriods,
		IncludeSections: types.AllSections(),
	}
	if err := c.ShouldBindJSON(&cfg); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if memo != nil {
		cfg.Memo = memo(cfg.Memo)
	}

	res, err := svc.Report(c.Request.Context(), cfg)
	if err != nil {
		c.JSON(layoutStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Report-Pages", fmt.Sprint(len(res.Document.Pages)))
	c.Header("X-Duplicates-Removed", fmt.Sprint(len(res.Removed)))

	if c.Query("format") == "text" {
		preview, err := text.Render(res.Document)
		if err != nil {
			c.JSON(layoutStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.String(http.StatusOK, preview)
		return
	}

	body, err := pdf.Bytes(res.Document)
	if err != nil {
		c.JSON(layoutStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Document.Filename))
	c.Data(http.StatusOK, "application/pdf", body)
}

// GetSummaryHandler returns the aggregation behind a report for the dashboard.
// month and year query parameters select the period and default to "all".
func GetSummaryHandler(c *gin.Context, svc PatrolService) {
	cfg := types.ReportConfig{
		SelectedMonth: c.DefaultQuery("month", types.AllPeriods),
		SelectedYear:  c.DefaultQuery("year", types.AllPeriods),
	}

	a, err := svc.Summary(c.Request.Context(), cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":      a.Period.Label(),
		"stats":       a.Stats,
		"aggregation": a.Aggregation,
	})
}

// layoutStatus maps layout failures to 422 and anything else to 500.
func layoutStatus(err error) int {
	if errors.Is(err, layout.ErrLayoutFailure) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
