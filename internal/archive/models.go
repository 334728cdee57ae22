package archive

import (
	"time"
)

// Record is an archived observation: a few index columns and the whole
// document as MessagePack.
type Record struct {
	ID           string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	ProfileID    string     `gorm:"column:profile_id;index" json:"profile_id,omitempty"`
	Source       string     `gorm:"column:source" json:"source,omitempty"`
	LocationName string     `gorm:"column:location_name;index" json:"location_name,omitempty"`
	Latitude     float64    `gorm:"column:latitude" json:"latitude"`
	Longitude    float64    `gorm:"column:longitude" json:"longitude"`
	Elevation    *float64   `gorm:"column:elevation" json:"elevation,omitempty"`
	RecordTime   *time.Time `gorm:"column:record_time;index" json:"record_time,omitempty"`
	ProfileDepth *float64   `gorm:"column:profile_depth" json:"profile_depth,omitempty"`
	Layers       int        `gorm:"column:layers" json:"layers"`
	Profiles     int        `gorm:"column:profiles" json:"profiles"`
	Document     []byte     `gorm:"column:document;not null" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for Record
func (Record) TableName() string {
	return "snow_profiles"
}

// Filter narrows a listing. Zero values do not filter.
type Filter struct {
	// Location matches a substring of the location name, ignoring case.
	Location string
	From     *time.Time
	To       *time.Time
	Limit    int
}
