package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReviewStatus はレビューワークフロー上の状態。
type ReviewStatus string

const (
	ReviewPending    ReviewStatus = "pending"
	ReviewInProgress ReviewStatus = "in-progress"
	ReviewApproved   ReviewStatus = "approved"
	ReviewRejected   ReviewStatus = "rejected"
)

// NewReviewStatus validates a review status. Empty input yields pending.
func NewReviewStatus(value string) (ReviewStatus, error) {
	switch ReviewStatus(strings.ToLower(strings.TrimSpace(value))) {
	case "", ReviewPending:
		return ReviewPending, nil
	case ReviewInProgress:
		return ReviewInProgress, nil
	case ReviewApproved:
		return ReviewApproved, nil
	case ReviewRejected:
		return ReviewRejected, nil
	}
	return "", fmt.Errorf("invalid review status: %s", value)
}

func (s ReviewStatus) String() string {
	return string(s)
}

// SeverityTag is the coarse severity label attached to a report.
type SeverityTag string

const (
	SeverityLow      SeverityTag = "low"
	SeverityModerate SeverityTag = "moderate"
	SeverityHigh     SeverityTag = "high"
	SeveritySevere   SeverityTag = "severe"
	SeverityUnknown  SeverityTag = "unknown"
)

// NewSeverityTag validates a severity tag. "medium" is accepted as moderate.
func NewSeverityTag(value string) (SeverityTag, error) {
	switch normalized := strings.ToLower(strings.TrimSpace(value)); normalized {
	case "":
		return SeverityUnknown, nil
	case "medium":
		return SeverityModerate, nil
	case string(SeverityLow), string(SeverityModerate), string(SeverityHigh), string(SeveritySevere), string(SeverityUnknown):
		return SeverityTag(normalized), nil
	}
	return "", fmt.Errorf("invalid severity: %s", value)
}

// ParseSeverityTag は不正値を unknown に丸める寛容版。
func ParseSeverityTag(value string) SeverityTag {
	tag, err := NewSeverityTag(value)
	if err != nil {
		return SeverityUnknown
	}
	return tag
}

func (s SeverityTag) String() string {
	return string(s)
}

// ImageStatus は FinalImage の処理ステータス。
type ImageStatus string

const (
	ImagePending   ImageStatus = "Pending"
	ImageCritical  ImageStatus = "Critical"
	ImageProcessed ImageStatus = "Processed"
	ImageResolved  ImageStatus = "Resolved"
)

// NewImageStatus validates a FinalImage status case-insensitively.
func NewImageStatus(value string) (ImageStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, status := range []ImageStatus{ImagePending, ImageCritical, ImageProcessed, ImageResolved} {
		if strings.EqualFold(trimmed, string(status)) {
			return status, nil
		}
	}
	if trimmed == "" {
		return ImagePending, nil
	}
	return "", fmt.Errorf("invalid image status: %s", value)
}

func (s ImageStatus) String() string {
	return string(s)
}

// DamageTypes is a de-duplicated list of damage labels.
// JSON input may be a bare string or an array; both normalise to a list.
type DamageTypes []string

// NewDamageTypes trims, drops empties and de-duplicates.
func NewDamageTypes(values ...string) DamageTypes {
	result := make(DamageTypes, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

// UnmarshalJSON accepts "pothole", ["pothole","crack"] or null.
func (d *DamageTypes) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*d = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*d = NewDamageTypes(single)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("damageType must be a string or a list of strings")
	}
	*d = NewDamageTypes(list...)
	return nil
}

// Strings returns a copy of the underlying labels.
func (d DamageTypes) Strings() []string {
	return append([]string{}, d...)
}

// Coordinates holds an optional latitude/longitude pair as received.
type Coordinates struct {
	Latitude  string
	Longitude string
}

// IsZero reports whether no coordinates were supplied.
func (c Coordinates) IsZero() bool {
	return strings.TrimSpace(c.Latitude) == "" && strings.TrimSpace(c.Longitude) == ""
}

// Complete reports whether both latitude and longitude are present.
func (c Coordinates) Complete() bool {
	return strings.TrimSpace(c.Latitude) != "" && strings.TrimSpace(c.Longitude) != ""
}
