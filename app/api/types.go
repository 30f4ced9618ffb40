package api

import (
	"biliwatch/app/config"
	"biliwatch/app/database"
	"biliwatch/app/tasks"
	"biliwatch/app/watcher"
)

type Handler struct {
	repo      database.DeliveryRepository
	watchList *config.WatchList
	watcher   *watcher.Watcher
	scheduler tasks.TaskSchedulerInterface
}
