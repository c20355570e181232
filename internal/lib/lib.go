// Package lib groups infrastructure clients that do not belong to a layer:
// delayed jobs (asynq), periodic jobs (cron), the obs-websocket client and
// the asset directory watcher.
package lib
