package service

import (
	"encoding/json"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
)

// Data keys the mobile app treats as an in-app deep link. When one is
// present the app renders its own banner, so the OS-level notification is
// suppressed on Android to avoid double display.
var linkKeys = []string{"link_url", "link"}

// BuildParams are the per-job inputs to message construction.
type BuildParams struct {
	Title    string
	Body     string
	Data     map[string]interface{}
	ImageURL string
	// CollapseID lets gateway-level retries collapse into a single OS
	// notification. Generated when empty; supply one for determinism.
	CollapseID string
}

// BuildMessage constructs the platform-appropriate wire message for one
// token. Pure: identical inputs produce identical output (modulo a
// generated CollapseID).
func BuildMessage(token, platform string, p BuildParams) *messaging.Message {
	collapse := p.CollapseID
	if collapse == "" {
		collapse = uuid.NewString()
	}

	data := normalizeData(p.Data)
	if p.ImageURL != "" {
		// Replicated into data so the app's own rendering can use it.
		data["image_url"] = p.ImageURL
	}

	msg := &messaging.Message{
		Token: token,
		Data:  data,
		Android: &messaging.AndroidConfig{
			Priority:    "high",
			CollapseKey: collapse,
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-collapse-id": collapse,
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if silentDelivery(platform, data) {
		// The app shows its own notification for deep links; carry the
		// alert text in data only.
		data["title"] = p.Title
		data["body"] = p.Body
		return msg
	}

	msg.Notification = &messaging.Notification{
		Title:    p.Title,
		Body:     p.Body,
		ImageURL: p.ImageURL,
	}
	if p.ImageURL != "" {
		msg.APNS.Payload.Aps.MutableContent = true
	}
	return msg
}

// silentDelivery decides between a data-only message and a visible alert.
func silentDelivery(platform string, data map[string]string) bool {
	if platform != "android" {
		return false
	}
	for _, key := range linkKeys {
		if data[key] != "" {
			return true
		}
	}
	return false
}

// normalizeData converts the open data bag to the string-only wire format.
// Non-string values are JSON-encoded.
func normalizeData(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		switch v := value.(type) {
		case string:
			out[key] = v
		case nil:
			out[key] = ""
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				out[key] = fmt.Sprint(v)
				continue
			}
			out[key] = string(encoded)
		}
	}
	return out
}
