package models

import "time"

// Валюты и периоды оплаты аренды
const (
	CurrencyDollar = "$"
	CurrencyPound  = "£"
	CurrencyNaira  = "₦"
	CurrencyRupee  = "₹"

	RentMonthly  = "Monthly"
	RentAnnually = "Annually"

	ListingRent = "Rent"
)

// RentPrice стоимость аренды
type RentPrice struct {
	Currency string  `json:"currency" validate:"required,oneof=$ £ ₦ ₹"`
	Category string  `json:"category" validate:"required,oneof=Monthly Annually"`
	Amount   float64 `json:"amount" validate:"gt=0"`
}

// PropertyFeature характеристика объекта (спальни, ванные и т.п.)
type PropertyFeature struct {
	Title      string `json:"title" validate:"required"`
	Quantities int    `json:"quantities" validate:"gte=0"`
}

// Property объявление о сдаче жилья
type Property struct {
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
	ID                    string            `json:"id"`
	UserID                string            `json:"userId"`
	PropertyTitle         string            `json:"propertyTitle"`
	ListingType           string            `json:"listingType"`
	PropertyCategory      string            `json:"propertyCategory"`
	RentPrice             RentPrice         `json:"rentPrice"`
	Location              GeoPoint          `json:"location"`
	PhotosVideos          []string          `json:"photosVideos"`
	PropertyFeatures      []PropertyFeature `json:"propertyFeatures"`
	EnvironmentFacilities []string          `json:"environmentFacilities"`
}

// NearbyProperty объявление с расстоянием до точки поиска
type NearbyProperty struct {
	Property
	DistanceKM float64 `json:"distanceKm"`
}

// Favourite объявление в избранном пользователя
type Favourite struct {
	CreatedAt  time.Time `json:"createdAt"`
	UserID     string    `json:"userId"`
	PropertyID string    `json:"propertyId"`
}

// Review отзыв на объявление
type Review struct {
	CreatedAt  time.Time `json:"createdAt"`
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	PropertyID string    `json:"propertyId"`
	Comment    string    `json:"comment"`
	Rating     int       `json:"rating"`
}

// SupportMessage обращение в поддержку
type SupportMessage struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Resolved  bool      `json:"resolved"`
}

// TermConditions пользовательское соглашение и лицензия
type TermConditions struct {
	UpdatedAt     time.Time `json:"updatedAt"`
	Terms         string    `json:"terms"`
	UseAndLicense string    `json:"useAndlicense"`
}

// PaymentMethod реквизиты для получения оплаты
type PaymentMethod struct {
	UpdatedAt     time.Time `json:"updatedAt"`
	UserID        string    `json:"userId"`
	AccountNumber string    `json:"accountNumber"`
	AccountName   string    `json:"accountName"`
	BankName      string    `json:"bankName"`
}

// Типы сообщений чата
const (
	ChatText     = "text"
	ChatAudio    = "audio"
	ChatVideo    = "video"
	ChatDocument = "document"
)

// ChatMessage сообщение между двумя пользователями.
// Для медиа и документов MessageContent хранит URL.
type ChatMessage struct {
	CreatedAt      time.Time `json:"createdAt"`
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	MessageType    string    `json:"messageType"`
	MessageContent string    `json:"messageContent"`
}
