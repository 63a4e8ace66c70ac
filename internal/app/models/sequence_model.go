package models

import (
	"fmt"
	"time"
)

// Sequence describes how numbers drawn from a named counter are formatted.
// NumberNext is the next number to issue; both backends advance it.
type Sequence struct {
	Name       string    `gorm:"type:varchar(64);primaryKey" json:"name"`
	Prefix     string    `gorm:"type:varchar(32)" json:"prefix"`
	Padding    int       `gorm:"not null;default:0" json:"padding"`
	NumberNext int64     `gorm:"not null;default:1" json:"number_next"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Sequence) Format(number int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Padding, number)
}
