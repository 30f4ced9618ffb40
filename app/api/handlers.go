package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"biliwatch/app/config"
	"biliwatch/app/database"
	"biliwatch/app/tasks"
	"biliwatch/app/watcher"
)

const maxDeliveriesPerPage = 100

func NewHandler(repo database.DeliveryRepository, watchList *config.WatchList,
	w *watcher.Watcher, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		repo:      repo,
		watchList: watchList,
		watcher:   w,
		scheduler: scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if stats, err := h.repo.GetStats(); err == nil {
		health["status"] = "ok"
		health["recorded_deliveries"] = stats.TotalDeliveries
	} else {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		health["status"] = "degraded"
	}

	health["watched_creators"] = len(h.watchList.Enabled())

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := map[string]interface{}{
		"total_deliveries": stats.TotalDeliveries,
		"today_deliveries": stats.TodayDeliveries,
		"authors_seen":     stats.CreatorCount,
		"watched_creators": len(h.watchList.Enabled()),
	}
	if stats.LatestRecordAt != nil {
		response["latest_record_at"] = stats.LatestRecordAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListDeliveries(c *gin.Context) {
	authorID := c.Query("author_id")
	if authorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing author_id query parameter"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit query parameter"})
			return
		}
		limit = parsed
	}
	if limit > maxDeliveriesPerPage {
		limit = maxDeliveriesPerPage
	}

	records, err := h.repo.GetRecentDeliveries(authorID, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_deliveries", "author_id", authorID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	deliveries := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		entry := map[string]interface{}{
			"item_id":     r.ItemID,
			"author_id":   r.AuthorID,
			"author_name": r.AuthorName,
			"content":     r.Content,
			"recorded_at": r.RecordedAt.Format(time.RFC3339),
		}
		if r.PublishedAt != nil {
			entry["published_at"] = r.PublishedAt.Format(time.RFC3339)
		}
		deliveries = append(deliveries, entry)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"deliveries": deliveries,
		"total":      len(deliveries),
	})
}

func (h *Handler) APITriggerCheck(c *gin.Context) {
	task := tasks.NewQuickCheckTask(h.watcher)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing check task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue check task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Check task enqueued successfully",
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}
