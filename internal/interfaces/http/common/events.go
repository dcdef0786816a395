package common

import "github.com/inspectify/inspectify/api/internal/realtime"

// Server-to-client realtime events.
const (
	EventNewRoadEntry               = "new-road-entry"
	EventAdminNotification          = "admin-notification"
	EventPredictionComplete         = "prediction-complete"
	EventAnalysisComplete           = "analysis-complete"
	EventImageReviewed              = "image-reviewed"
	EventImageReviewedBroadcast     = "image-reviewed-broadcast"
	EventAdminNotificationBroadcast = "admin-notification-broadcast"
	EventNotification               = "notification"
)

// Notifier pushes realtime events. *realtime.Dispatcher implements it.
type Notifier interface {
	NotifyUser(userID, event string, payload any) int
	NotifyUserWithAck(userID, event string, payload any, onAck realtime.AckFunc) int
	NotifyAdmins(event string, payload any) int
	Broadcast(event string, payload any) int
}
