package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-patrol/classifier"
	"go-patrol/db"
	"go-patrol/location"
)

func ClassifyHandler(c *gin.Context, cls *classifier.Classifier) {
	var request struct {
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	label := cls.Classify(request.Description)
	c.JSON(http.StatusOK, gin.H{
		"incidentType": label,
		"baseType":     classifier.BaseLabel(label),
	})
}

// ResolveLocationHandler maps free-text locations onto the gazetteer.
func ResolveLocationHandler(c *gin.Context, res *location.Resolver) {
	var request struct {
		Location string `json:"location" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(request.Location) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is blank"})
		return
	}

	resolved := res.Resolve(request.Location)
	c.JSON(http.StatusOK, gin.H{
		"municipality": resolved.Municipality,
		"district":     resolved.District,
		"matched":      resolved.Matched,
		"areas":        res.DetectAreas(request.Location, res.Areas()),
	})
}

// GetIncidentHandler returns a stored incident as the pipeline would enrich it.
func GetIncidentHandler(c *gin.Context, svc PatrolService) {
	rec, err := svc.Incident(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, db.ErrIncidentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
