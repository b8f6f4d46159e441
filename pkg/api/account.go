package api

import (
	"time"

	"github.com/iudanet/rentspace/internal/models"
)

// UpdateProfileRequest частичное обновление анкеты. Пустые поля не меняются.
type UpdateProfileRequest struct {
	Location                *models.GeoPoint         `json:"location,omitempty"`
	DateOfBirth             *time.Time               `json:"dateOfBirth,omitempty"`
	SocialMediaLinks        *models.SocialMediaLinks `json:"socialMediaLinks,omitempty"`
	Name                    *string                  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	PhoneNumber             *string                  `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
	ProfileImage            *string                  `json:"profileImage,omitempty" validate:"omitempty,url"`
	Address                 *string                  `json:"address,omitempty"`
	Gender                  *string                  `json:"gender,omitempty"`
	PreferableID            *string                  `json:"preferableId,omitempty"`
	NextOfKinName           *string                  `json:"nextOfKinName,omitempty"`
	NextOfKinPhoneNumber    *string                  `json:"nextOfKinPhoneNumber,omitempty"`
	NextOfKinRelationship   *string                  `json:"nextOfKinRelationship,omitempty"`
	Occupation              *string                  `json:"occupation,omitempty"`
	CompanyName             *string                  `json:"companyName,omitempty"`
	CompanyAddress          *string                  `json:"companyAddress,omitempty"`
	SupervisorOrManagerName *string                  `json:"supervisorOrManagerName,omitempty"`
	ProofOfOwnershipDocs    []string                 `json:"proofOfOwnerShipDoc,omitempty" validate:"omitempty,dive,url"`
	PropertyPictures        []string                 `json:"propertyPictures,omitempty" validate:"omitempty,dive,url"`
}

// UserResponse учетная запись вместе с анкетой
type UserResponse struct {
	Profile   *models.Profile `json:"profile"`
	CreatedAt time.Time       `json:"createdAt"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Verified  bool            `json:"verified"`
	Active    bool            `json:"active"`
}

// LevelResponse уровень заполненности анкеты
type LevelResponse struct {
	Level int `json:"level"`
}

// SettingsRequest новые настройки пользователя
type SettingsRequest struct {
	NotificationSettings models.NotificationSettings `json:"notificationSettings"`
	PrivacyAndSecurity   models.PrivacySettings      `json:"privacyAndSecurity"`
}
