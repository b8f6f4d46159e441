package models

import "time"

// GeoPoint координаты в порядке GeoJSON: [долгота, широта]
type GeoPoint struct {
	Coordinates [2]float64 `json:"coordinates" validate:"coordinates"`
}

// Lon долгота
func (g GeoPoint) Lon() float64 { return g.Coordinates[0] }

// Lat широта
func (g GeoPoint) Lat() float64 { return g.Coordinates[1] }

// SocialMediaLinks ссылки на профили в соцсетях
type SocialMediaLinks struct {
	X         string `json:"x,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Threads   string `json:"threads,omitempty"`
}

// Profile анкета пользователя, хранится отдельно от учетных данных
type Profile struct {
	UpdatedAt               time.Time        `json:"updatedAt"`
	Location                *GeoPoint        `json:"location,omitempty"`
	DateOfBirth             *time.Time       `json:"dateOfBirth,omitempty"`
	SocialMediaLinks        SocialMediaLinks `json:"socialMediaLinks"`
	UserID                  string           `json:"userId"`
	PhoneNumber             string           `json:"phoneNumber,omitempty"`
	ProfileImage            string           `json:"profileImage,omitempty"`
	Address                 string           `json:"address,omitempty"`
	Gender                  string           `json:"gender,omitempty"`
	PreferableID            string           `json:"preferableId,omitempty"`
	NextOfKinName           string           `json:"nextOfKinName,omitempty"`
	NextOfKinPhoneNumber    string           `json:"nextOfKinPhoneNumber,omitempty"`
	NextOfKinRelationship   string           `json:"nextOfKinRelationship,omitempty"`
	Occupation              string           `json:"occupation,omitempty"`
	CompanyName             string           `json:"companyName,omitempty"`
	CompanyAddress          string           `json:"companyAddress,omitempty"`
	SupervisorOrManagerName string           `json:"supervisorOrManagerName,omitempty"`
	ProofOfOwnershipDocs    []string         `json:"proofOfOwnerShipDoc,omitempty"`
	PropertyPictures        []string         `json:"propertyPictures,omitempty"`
}

// Level уровень заполненности анкеты (1-4).
// 1 - только регистрация, 2 - личные данные, 3 - ближайший родственник и работа,
// 4 - загружены документы о собственности.
func (p *Profile) Level() int {
	if p == nil {
		return 1
	}

	level := 1
	if p.PhoneNumber != "" && p.DateOfBirth != nil && p.Address != "" && p.Gender != "" {
		level = 2
	} else {
		return level
	}

	if p.NextOfKinName != "" && p.NextOfKinPhoneNumber != "" && p.Occupation != "" {
		level = 3
	} else {
		return level
	}

	if len(p.ProofOfOwnershipDocs) > 0 {
		level = 4
	}

	return level
}

// NotificationSettings настройки уведомлений
type NotificationSettings struct {
	EmailNotification      bool `json:"emailNotification"`
	Reminder               bool `json:"reminder"`
	Listing                bool `json:"listing"`
	DoNotDisturb           bool `json:"doNotDistrub"`
	NotificationLockScreen bool `json:"notificationLockScreen"`
	StatusBarNotification  bool `json:"statusbarNotification"`
}

// PrivacySettings настройки безопасности и внешнего вида
type PrivacySettings struct {
	SecurityLock        bool `json:"securityLock"`
	FaceIDOrFingerprint bool `json:"faceIdOrFingerPrint"`
	DarkMode            bool `json:"darkMode"`
}

// Settings пользовательские настройки
type Settings struct {
	UserID               string               `json:"userId"`
	NotificationSettings NotificationSettings `json:"notificationSettings"`
	PrivacyAndSecurity   PrivacySettings      `json:"privacyAndSecurity"`
}

// DefaultSettings настройки, создаваемые при подтверждении регистрации
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID: userID,
		NotificationSettings: NotificationSettings{
			EmailNotification:      true,
			Reminder:               true,
			Listing:                true,
			NotificationLockScreen: true,
			StatusBarNotification:  true,
		},
	}
}
