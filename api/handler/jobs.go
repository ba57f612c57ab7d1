package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrodata/pestreg/models"
	"github.com/agrodata/pestreg/scraper"
	"github.com/agrodata/pestreg/webhook"
)

// searchStore holds all in-flight and completed async search jobs.
var searchStore sync.Map

func init() {
	// Background goroutine to expire search jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			searchStore.Range(func(key, value any) bool {
				job := value.(*models.SearchJob)
				if job.CreatedAt < cutoff {
					searchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostSearchAsync returns a handler for POST /api/v1/search/async.
// The run executes in the background; progress and the final result are
// pushed to the request's webhook URL if one is set.
func PostSearchAsync(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SearchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		jobID := "search-" + randomID()
		job := &models.SearchJob{
			ID:            jobID,
			Status:        "processing",
			Term:          req.ActiveIngredient,
			CreatedAt:     time.Now().Unix(),
			WebhookURL:    req.WebhookURL,
			WebhookSecret: req.WebhookSecret,
		}
		searchStore.Store(jobID, job)

		go runSearchJob(sc, job, req)

		c.JSON(http.StatusOK, models.SearchJobResponse{
			ID:     jobID,
			Status: "processing",
		})
	}
}

// GetSearch returns a handler for GET /api/v1/search/:id.
func GetSearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := searchStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "search job not found",
				},
			})
			return
		}

		job := val.(*models.SearchJob)
		c.JSON(http.StatusOK, models.SearchJobStatusResponse{
			ID:     job.ID,
			Status: job.Status,
			Term:   job.Term,
			Pages:  job.Pages,
			Total:  job.Total,
			Result: job.Result,
		})
	}
}

// runSearchJob executes the search in the background and streams progress
// to the job's webhook.
func runSearchJob(sc *scraper.Scraper, job *models.SearchJob, req models.SearchRequest) {
	start := time.Now()

	notify := func(page, total int) {
		job.Pages = page
		job.Total = total
		if job.WebhookURL != "" {
			webhook.DeliverAsync(job.WebhookURL, job.WebhookSecret, &webhook.Event{
				Type:      webhook.EventSearchPage,
				JobID:     job.ID,
				Timestamp: time.Now().Unix(),
				Data: gin.H{
					"term":  job.Term,
					"page":  page,
					"total": total,
				},
			})
		}
	}

	result, err := sc.Search(context.Background(), &req, notify)
	if err != nil {
		job.Status = "failed"
		scrapeErr, ok := err.(*models.ScrapeError)
		if !ok {
			scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
		}
		job.Result = &models.SearchResponse{
			Success: false,
			Term:    job.Term,
			Error:   scrapeErr.ToDetail(),
			Timing: models.TimingInfo{
				TotalMs: time.Since(start).Milliseconds(),
			},
		}
		if job.WebhookURL != "" {
			webhook.DeliverAsync(job.WebhookURL, job.WebhookSecret, &webhook.Event{
				Type:      webhook.EventSearchFailed,
				JobID:     job.ID,
				Timestamp: time.Now().Unix(),
				Data: gin.H{
					"term":  job.Term,
					"error": scrapeErr.ToDetail(),
				},
			})
		}
		slog.Error("search job failed", "id", job.ID, "term", job.Term, "error", err)
		return
	}

	job.Pages = result.Pages
	job.Total = result.TotalItems
	job.Result = &models.SearchResponse{
		Success: true,
		Term:    job.Term,
		Total:   result.TotalItems,
		Pages:   result.Pages,
		Records: result.Records,
		Timing: models.TimingInfo{
			TotalMs:  time.Since(start).Milliseconds(),
			SearchMs: time.Since(start).Milliseconds(),
		},
	}
	job.Status = "completed"

	if job.WebhookURL != "" {
		webhook.DeliverAsync(job.WebhookURL, job.WebhookSecret, &webhook.Event{
			Type:      webhook.EventSearchCompleted,
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      job.Result,
		})
	}

	slog.Info("search job finished",
		"id", job.ID,
		"term", job.Term,
		"pages", result.Pages,
		"total", result.TotalItems,
	)
}

// randomID generates an 8-byte hex job ID.
func randomID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(b)
}
