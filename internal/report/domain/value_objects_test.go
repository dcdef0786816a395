package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageTypesUnmarshal(t *testing.T) {
	var payload struct {
		DamageType DamageTypes `json:"damageType"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"damageType":"pothole"}`), &payload))
	assert.Equal(t, DamageTypes{"pothole"}, payload.DamageType)

	require.NoError(t, json.Unmarshal([]byte(`{"damageType":["crack"," crack ","pothole",""]}`), &payload))
	assert.Equal(t, DamageTypes{"crack", "pothole"}, payload.DamageType)

	require.NoError(t, json.Unmarshal([]byte(`{"damageType":null}`), &payload))
	assert.Nil(t, payload.DamageType)

	assert.Error(t, json.Unmarshal([]byte(`{"damageType":42}`), &payload))
}

func TestNewReviewStatus(t *testing.T) {
	status, err := NewReviewStatus("")
	require.NoError(t, err)
	assert.Equal(t, ReviewPending, status)

	status, err = NewReviewStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, ReviewApproved, status)

	_, err = NewReviewStatus("done")
	assert.Error(t, err)
}

func TestNewSeverityTag(t *testing.T) {
	tag, err := NewSeverityTag("medium")
	require.NoError(t, err)
	assert.Equal(t, SeverityModerate, tag)

	_, err = NewSeverityTag("extreme")
	assert.Error(t, err)
	assert.Equal(t, SeverityUnknown, ParseSeverityTag("extreme"))
}

func TestNewImageStatus(t *testing.T) {
	status, err := NewImageStatus("critical")
	require.NoError(t, err)
	assert.Equal(t, ImageCritical, status)

	_, err = NewImageStatus("closed")
	assert.Error(t, err)
}

func TestRoadEntryApply(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entry := NewRoadEntry("uploads/a.jpg", Coordinates{Latitude: "17.1", Longitude: "78.2"}, "Main St", "user_9", now)
	assert.Equal(t, ReviewPending, entry.Status)
	assert.Equal(t, SeverityUnknown, entry.Severity)
	assert.False(t, entry.Reviewed)

	entry.Apply(Review{
		Status:     ReviewApproved,
		Severity:   SeverityHigh,
		DamageType: NewDamageTypes("pothole"),
		ReviewerID: "admin_1",
		ReviewedAt: now.Add(time.Hour),
	})

	assert.True(t, entry.Reviewed)
	assert.Equal(t, ReviewApproved, entry.Status)
	assert.Equal(t, DamageTypes{"pothole"}, entry.DamageType)
	require.NotNil(t, entry.ReviewedAt)
	assert.Equal(t, now.Add(time.Hour), *entry.ReviewedAt)
}
