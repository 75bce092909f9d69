// escalations.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// createEscalation records that a query produced no evidence and needs human
// follow-up. The record is persisted so it outlives the request; a failed save
// is logged but does not fail the caller, which still gets the payload.
func createEscalation(query, reason string) gin.H {
	now := time.Now().UTC()
	escalation := Escalation{
		ID:        now.UnixMilli(),
		Query:     query,
		Reason:    reason,
		Timestamp: now,
		Status:    EscalationStatusOpen,
	}

	if err := db.Create(&escalation).Error; err != nil {
		log.Printf("Failed to save escalation for query %q: %v", query, err)
	}

	return gin.H{
		"id":        escalation.ID,
		"query":     escalation.Query,
		"reason":    escalation.Reason,
		"timestamp": escalation.Timestamp,
		"status":    escalation.Status,
		"message":   fmt.Sprintf("Escalation created for query: '%s' - %s", query, reason),
	}
}

// listEscalations returns all recorded escalations, newest first
func listEscalations(c *gin.Context) {
	var escalations []Escalation
	if err := db.Order("id desc").Find(&escalations).Error; err != nil {
		RespondInternalError(c, "Failed to retrieve escalations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"escalations": escalations,
		"count":       len(escalations),
	})
}
