package model

import "time"

const (
	DateLayout  = "2006-01-02"
	PlanMaxSize = 10
)

// RevenueRecord holds at most one figure per (date, city, plan).
type RevenueRecord struct {
	Date          time.Time `gorm:"column:date;type:date;primaryKey;autoIncrement:false"`
	CityCode      int       `gorm:"column:city_code;primaryKey;autoIncrement:false"`
	Plan          string    `gorm:"column:plans;size:10;primaryKey"`
	RevenueCrores float64   `gorm:"column:plan_revenue_crores;not null"`
}

func (RevenueRecord) TableName() string {
	return "revenue_data"
}

// DateString is the canonical YYYY-MM-DD form of the record date.
func (r RevenueRecord) DateString() string {
	return r.Date.Format(DateLayout)
}
