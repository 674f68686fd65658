package models

import "time"

// Student holds the academic attributes of a student identity.
type Student struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	StudentID           string    `gorm:"size:64;index" json:"student_id"`
	Department          string    `gorm:"size:255" json:"department"`
	Level               string    `gorm:"size:16" json:"level"`
	MatriculationNumber string    `gorm:"size:64" json:"matriculation_number"`
	CreatedAt           time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// HOD holds the staff attributes of a head of department.
type HOD struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	StaffID     string    `gorm:"size:64;index" json:"staff_id"`
	Department  string    `gorm:"size:255" json:"department"`
	Designation string    `gorm:"size:255" json:"designation"`
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the plural table name used by the schema.
func (HOD) TableName() string { return "hods" }

// OrganizationSupervisor describes the host organisation contact of a placement.
type OrganizationSupervisor struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	OrganizationName    string    `gorm:"size:255" json:"organization_name"`
	OrganizationAddress string    `gorm:"type:text" json:"organization_address"`
	Position            string    `gorm:"size:255" json:"position"`
	Department          string    `gorm:"size:255" json:"department"`
	CreatedAt           time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
