package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Quote is the result of one extraction run over a quote page.
// Numeric fields are pointers: nil means the cascade found nothing usable.
type Quote struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Symbol          string             `bson:"symbol" json:"symbol"`
	Name            string             `bson:"name,omitempty" json:"name,omitempty"`
	Price           *float64           `bson:"price,omitempty" json:"price,omitempty"`
	Change          *float64           `bson:"change,omitempty" json:"change,omitempty"`
	ChangePercent   *float64           `bson:"change_percent,omitempty" json:"change_percent,omitempty"`
	MarketCloseTime string             `bson:"market_close_time,omitempty" json:"market_close_time,omitempty"`
	AfterHours      *SessionQuote      `bson:"after_hours,omitempty" json:"after_hours,omitempty"`
	RawSnapshot     []SnapshotNode     `bson:"raw_snapshot,omitempty" json:"raw_snapshot,omitempty"`
	FetchedAt       time.Time          `bson:"fetched_at" json:"fetched_at"`
}

// SessionQuote holds post-market values. Only present when at least one
// sub-field was extracted.
type SessionQuote struct {
	Price         *float64 `bson:"price,omitempty" json:"price,omitempty"`
	Change        *float64 `bson:"change,omitempty" json:"change,omitempty"`
	ChangePercent *float64 `bson:"change_percent,omitempty" json:"change_percent,omitempty"`
	Time          string   `bson:"time,omitempty" json:"time,omitempty"`
}

// SnapshotNode is one candidate data element captured verbatim for debugging,
// whether or not the cascade used it.
type SnapshotNode struct {
	Tag   string            `bson:"tag" json:"tag"`
	Text  string            `bson:"text" json:"text"`
	Attrs map[string]string `bson:"attrs,omitempty" json:"attrs,omitempty"`
}

func (q *Quote) HasMarketData() bool {
	return q.Price != nil || q.Change != nil || q.ChangePercent != nil
}

// IsEmpty reports that the cascade ran but every field stayed unset.
func (q *Quote) IsEmpty() bool {
	return !q.HasMarketData() && q.Name == "" && q.MarketCloseTime == "" && q.AfterHours == nil
}

// FieldsFound counts populated extracted fields, after-hours included.
func (q *Quote) FieldsFound() int {
	n := 0
	if q.Name != "" {
		n++
	}
	if q.Price != nil {
		n++
	}
	if q.Change != nil {
		n++
	}
	if q.ChangePercent != nil {
		n++
	}
	if q.MarketCloseTime != "" {
		n++
	}
	if ah := q.AfterHours; ah != nil {
		if ah.Price != nil {
			n++
		}
		if ah.Change != nil {
			n++
		}
		if ah.ChangePercent != nil {
			n++
		}
		if ah.Time != "" {
			n++
		}
	}
	return n
}
