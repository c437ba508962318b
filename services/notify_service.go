package services

import (
	"fmt"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

type notifyDeps struct {
	db *gorm.DB
	rt *RealtimeHub
	ps *PushService
}

var _notify notifyDeps

func InitNotifyDeps(db *gorm.DB, rt *RealtimeHub, ps *PushService) {
	_notify = notifyDeps{db: db, rt: rt, ps: ps}
}

// EmitNotification records a gamification event and fans it out to connected
// websocket clients and registered push devices. Safe to call anywhere;
// delivery failures never propagate back into the engine.
func EmitNotification(userID uint, kind, title, message string) {
	if _notify.db == nil {
		return // not initialized (tests, tooling)
	}
	n := &models.Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	_ = _notify.db.Create(n).Error

	if _notify.rt != nil {
		_notify.rt.Broadcast(userID, map[string]any{
			"kind":         "notification.created",
			"notification": n,
		})
	}
	if _notify.ps != nil {
		_notify.ps.PushToUser(userID, title, message, map[string]string{
			"kind": kind, "notificationId": fmt.Sprintf("%d", n.ID),
		})
	}
}
