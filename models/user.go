package models

import (
    "gorm.io/gorm"
)

type User struct {
    gorm.Model
    Email        string `gorm:"uniqueIndex;not null"`
    Password     string `gorm:"not null"`
    FullName     string
    WellnessGoal string // free-text onboarding goal, echoed into weekly reports
    Disabled     bool   `gorm:"default:false"`
}
