package models

import "time"

// AuthAttempt tracks one interactive login redirect until its callback is
// validated. State is the primary key, so two attempts can never share it.
type AuthAttempt struct {
	State        string    `gorm:"column:state;type:varchar(191);primaryKey" json:"state"`
	CodeVerifier string    `gorm:"column:code_verifier;type:varchar(255);not null" json:"codeVerifier"`
	Created      time.Time `gorm:"column:created;not null;autoCreateTime" json:"created"`
}

func (AuthAttempt) TableName() string { return "auth_attempts" }
