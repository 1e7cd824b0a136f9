// Package notify provides desktop notifications for nordgen.
// This file contains the freedesktop.org notification sender.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"nordgen/common"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
)

// Send shows a desktop notification through the session bus. It is
// best effort: when no session bus or notification daemon is
// available the error is returned for the caller to log, not act on.
func Send(summary, body string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return common.WrapError(err, "session bus unavailable")
	}

	var (
		replacesID uint32
		icon       string
		actions    []string
		hints      map[string]dbus.Variant
		timeoutMS  = int32(5000)
	)

	obj := conn.Object(notifyDest, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyMethod, 0,
		common.AppName, replacesID, icon, summary, body,
		actions, hints, timeoutMS)
	if call.Err != nil {
		return common.WrapError(call.Err, "notification failed")
	}
	return nil
}

// Completed announces a finished generation run.
func Completed(written, failed int) error {
	body := fmt.Sprintf("%d profiles written", written)
	if failed > 0 {
		body = fmt.Sprintf("%d profiles written, %d failed", written, failed)
	}
	return Send("WireGuard config generation finished", body)
}
