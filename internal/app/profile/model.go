package profile

import "time"

type Profile struct {
	ID             string     `json:"id" gorm:"primaryKey;type:varchar(255)"`
	Nickname       string     `json:"nickname" gorm:"not null;default:''"`
	FirstName      string     `json:"first_name" gorm:"not null;default:''"`
	LastName       string     `json:"last_name" gorm:"not null;default:''"`
	BirthDate      *time.Time `json:"birth_date" gorm:"type:date"`
	PhoneNumber    string     `json:"phone_number" gorm:"not null;default:''"`
	AvatarFileName string     `json:"avatar_file_name" gorm:"not null;default:''"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

type ProfileResponse struct {
	Profile
	AvatarURL string `json:"avatar_url"`
}

type UpdateProfileForm struct {
	Nickname    string `form:"nickname" json:"nickname" binding:"max=32"`
	FirstName   string `form:"first_name" json:"first_name" binding:"max=64"`
	LastName    string `form:"last_name" json:"last_name" binding:"max=64"`
	BirthDate   string `form:"birth_date" json:"birth_date"`
	PhoneNumber string `form:"phone_number" json:"phone_number" binding:"max=32"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
