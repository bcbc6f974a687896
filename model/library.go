package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Library sources
const (
	LibrarySourceUpload = "upload"
	LibrarySourceWatch  = "watch"
)

// Baseline 自定义类型用于 GORM JSON 字段的自动扫描
type Baseline struct {
	AnalysisResult
}

// Scan 实现 sql.Scanner 接口
func (b *Baseline) Scan(value interface{}) error {
	if value == nil {
		b.AnalysisResult = AnalysisResult{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported baseline column type %T", value)
	}
	if len(data) == 0 || string(data) == "null" {
		b.AnalysisResult = AnalysisResult{}
		return nil
	}
	return json.Unmarshal(data, &b.AnalysisResult)
}

// Value 实现 driver.Valuer 接口
func (b Baseline) Value() (driver.Value, error) {
	data, err := json.Marshal(b.AnalysisResult)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Library is one successfully loaded export. The baseline it carries is
// immutable; a new load creates a new row.
type Library struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	UserID       int64     `json:"userId" gorm:"index;not null"`
	Name         string    `json:"name" gorm:"size:255"`
	Source       string    `json:"source" gorm:"size:20;default:'upload'"`
	ObjectKey    string    `json:"objectKey,omitempty" gorm:"size:512"`
	TrackCount   int       `json:"trackCount"`
	FlaggedCount int       `json:"flaggedCount"`
	Baseline     Baseline  `json:"-" gorm:"type:longtext"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
}

// TableName 指定表名
func (Library) TableName() string {
	return "libraries"
}
