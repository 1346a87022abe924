package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_AndroidWithLinkIsSilent(t *testing.T) {
	msg := BuildMessage("tok", "android", BuildParams{
		Title:      "Notice",
		Body:       "Body",
		Data:       map[string]interface{}{"link_url": "https://x"},
		CollapseID: "nonce-1",
	})

	assert.Nil(t, msg.Notification)
	assert.Equal(t, "Notice", msg.Data["title"])
	assert.Equal(t, "Body", msg.Data["body"])
	assert.Equal(t, "https://x", msg.Data["link_url"])
}

func TestBuildMessage_IOSWithoutLinkIsAlert(t *testing.T) {
	msg := BuildMessage("tok", "ios", BuildParams{
		Title:      "Notice",
		Body:       "Body",
		CollapseID: "nonce-1",
	})

	require.NotNil(t, msg.Notification)
	assert.Equal(t, "Notice", msg.Notification.Title)
	assert.Equal(t, "Body", msg.Notification.Body)
}

func TestBuildMessage_IOSWithLinkStaysAlert(t *testing.T) {
	// Only Android double-displays link content; iOS keeps the OS alert.
	msg := BuildMessage("tok", "ios", BuildParams{
		Title:      "Notice",
		Body:       "Body",
		Data:       map[string]interface{}{"link_url": "https://x"},
		CollapseID: "nonce-1",
	})

	assert.NotNil(t, msg.Notification)
}

func TestBuildMessage_DataNormalizedToStrings(t *testing.T) {
	msg := BuildMessage("tok", "ios", BuildParams{
		Title:      "T",
		Body:       "B",
		CollapseID: "nonce-1",
		Data: map[string]interface{}{
			"screen": "ReportDetail",
			"params": map[string]interface{}{"id": 42},
			"count":  3,
			"flag":   true,
			"empty":  nil,
		},
	})

	assert.Equal(t, "ReportDetail", msg.Data["screen"])
	assert.JSONEq(t, `{"id":42}`, msg.Data["params"])
	assert.Equal(t, "3", msg.Data["count"])
	assert.Equal(t, "true", msg.Data["flag"])
	assert.Equal(t, "", msg.Data["empty"])
}

func TestBuildMessage_ImageOnBothPaths(t *testing.T) {
	alert := BuildMessage("tok", "ios", BuildParams{
		Title:      "T",
		Body:       "B",
		ImageURL:   "https://img/x.png",
		CollapseID: "nonce-1",
	})
	require.NotNil(t, alert.Notification)
	assert.Equal(t, "https://img/x.png", alert.Notification.ImageURL)
	assert.Equal(t, "https://img/x.png", alert.Data["image_url"])
	assert.True(t, alert.APNS.Payload.Aps.MutableContent)

	silent := BuildMessage("tok", "android", BuildParams{
		Title:      "T",
		Body:       "B",
		ImageURL:   "https://img/x.png",
		Data:       map[string]interface{}{"link": "https://x"},
		CollapseID: "nonce-1",
	})
	assert.Nil(t, silent.Notification)
	assert.Equal(t, "https://img/x.png", silent.Data["image_url"])
}

func TestBuildMessage_CollapseMarkerAttached(t *testing.T) {
	msg := BuildMessage("tok", "android", BuildParams{Title: "T", Body: "B", CollapseID: "nonce-1"})
	assert.Equal(t, "nonce-1", msg.Android.CollapseKey)
	assert.Equal(t, "nonce-1", msg.APNS.Headers["apns-collapse-id"])
}

func TestBuildMessage_GeneratesNonceWhenEmpty(t *testing.T) {
	msg := BuildMessage("tok", "android", BuildParams{Title: "T", Body: "B"})
	assert.NotEmpty(t, msg.Android.CollapseKey)
}

func TestBuildMessage_DeterministicWithSuppliedNonce(t *testing.T) {
	p := BuildParams{
		Title:      "T",
		Body:       "B",
		Data:       map[string]interface{}{"screen": "Home"},
		CollapseID: "fixed",
	}
	a := BuildMessage("tok", "ios", p)
	b := BuildMessage("tok", "ios", p)
	assert.Equal(t, a, b)
}
