package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoadEntryDocument は roadloc コレクションのスキーマ。
type RoadEntryDocument struct {
	ID                primitive.ObjectID `bson:"_id"`
	ImagePath         string             `bson:"imagePath"`
	Latitude          string             `bson:"latitude"`
	Longitude         string             `bson:"longitude"`
	Address           string             `bson:"address,omitempty"`
	Timestamp         time.Time          `bson:"timestamp"`
	Status            string             `bson:"status"`
	Reviewed          bool               `bson:"reviewed"`
	ReviewNotes       string             `bson:"reviewNotes,omitempty"`
	Severity          string             `bson:"severity"`
	DamageType        StringList         `bson:"damageType,omitempty"`
	RecommendedAction string             `bson:"recommendedAction,omitempty"`
	ReviewedAt        *time.Time         `bson:"reviewedAt,omitempty"`
	UserID            string             `bson:"userId"`
	ReviewerID        string             `bson:"reviewerId,omitempty"`
}

// GeoPointDocument is a GeoJSON point; coordinates are [longitude, latitude].
type GeoPointDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

// FinalImageDocument は final_images コレクションのスキーマ。
type FinalImageDocument struct {
	ID                 primitive.ObjectID `bson:"_id"`
	ImagePath          string             `bson:"imagePath"`
	AnnotatedImagePath string             `bson:"annotatedImagePath,omitempty"`
	Latitude           *float64           `bson:"latitude,omitempty"`
	Longitude          *float64           `bson:"longitude,omitempty"`
	Location           *GeoPointDocument  `bson:"location,omitempty"`
	Address            string             `bson:"address,omitempty"`
	AnalysisResult     bson.M             `bson:"analysisResult"`
	Status             string             `bson:"status"`
	Severity           int                `bson:"severity"`
	SeverityLevel      string             `bson:"severityLevel"`
	DamageType         string             `bson:"damageType"`
	DetectionCount     int                `bson:"detectionCount"`
	ProcessingTime     float64            `bson:"processingTime"`
	UserID             string             `bson:"userId"`
	CreatedAt          time.Time          `bson:"createdAt"`
	Reviewed           bool               `bson:"reviewed"`
	ReviewStatus       string             `bson:"reviewStatus,omitempty"`
	ReviewNotes        string             `bson:"reviewNotes,omitempty"`
	ReviewSeverity     string             `bson:"reviewSeverity,omitempty"`
	ReviewDamageType   StringList         `bson:"reviewDamageType,omitempty"`
	RecommendedAction  string             `bson:"recommendedAction,omitempty"`
	ReviewedAt         *time.Time         `bson:"reviewedAt,omitempty"`
	ReviewerID         string             `bson:"reviewerId,omitempty"`
}

// FeedbackDocument は feedbacks コレクションのスキーマ。
type FeedbackDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	Subject       string             `bson:"subject"`
	Message       string             `bson:"message"`
	Completed     bool               `bson:"completed"`
	DateSubmitted time.Time          `bson:"dateSubmitted"`
	UserID        string             `bson:"userId,omitempty"`
	Reply         string             `bson:"reply,omitempty"`
	Replied       bool               `bson:"replied"`
	ReplyDate     *time.Time         `bson:"replyDate,omitempty"`
}

// UserDocument は login コレクションのスキーマ。
type UserDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	Password  string             `bson:"password"`
	IsAdmin   bool               `bson:"isAdmin"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// StringList decodes either a BSON string or an array of strings. Older
// documents stored damageType as a bare string.
type StringList []string

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (l *StringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*l = nil
		return nil
	case bsontype.String:
		value, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
		if !ok {
			return fmt.Errorf("invalid string value")
		}
		if value == "" {
			*l = nil
			return nil
		}
		*l = StringList{value}
		return nil
	case bsontype.Array:
		var values []string
		if err := bson.UnmarshalValue(t, data, &values); err != nil {
			return err
		}
		*l = values
		return nil
	}
	return fmt.Errorf("cannot decode %s into a string list", t)
}

// plainValue converts driver container types (bson.D, bson.A) found in
// schemaless payloads into maps and slices that encode cleanly as JSON.
func plainValue(value any) any {
	switch v := value.(type) {
	case primitive.D:
		m := make(map[string]any, len(v))
		for _, e := range v {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = plainValue(item)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = plainValue(item)
		}
		return m
	case primitive.A:
		s := make([]any, len(v))
		for i, item := range v {
			s[i] = plainValue(item)
		}
		return s
	case []any:
		s := make([]any, len(v))
		for i, item := range v {
			s[i] = plainValue(item)
		}
		return s
	case int32:
		return int64(v)
	}
	return value
}
