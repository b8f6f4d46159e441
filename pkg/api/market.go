package api

import "github.com/iudanet/rentspace/internal/models"

// PropertyRequest создание или замена объявления
type PropertyRequest struct {
	PropertyTitle         string                   `json:"propertyTitle" validate:"required,max=200"`
	PropertyCategory      string                   `json:"propertyCategory" validate:"required"`
	Location              models.GeoPoint          `json:"location"`
	RentPrice             models.RentPrice         `json:"rentPrice"`
	PhotosVideos          []string                 `json:"photosVideos" validate:"required,dive,url"`
	PropertyFeatures      []models.PropertyFeature `json:"propertyFeatures" validate:"required,dive"`
	EnvironmentFacilities []string                 `json:"environmentFacilities" validate:"required"`
}

// FavouriteResponse состояние избранного после переключения
type FavouriteResponse struct {
	PropertyID string `json:"propertyId"`
	Favourite  bool   `json:"favourite"`
}

// ReviewRequest новый отзыв
type ReviewRequest struct {
	PropertyID string `json:"propertyId" validate:"required,uuid"`
	Comment    string `json:"comment" validate:"required,max=2000"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
}

// SupportRequest обращение в поддержку или ответ администратора
type SupportRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ChatRequest новое сообщение в чат
type ChatRequest struct {
	ReceiverID     string `json:"receiverId" validate:"required,uuid"`
	MessageType    string `json:"messageType" validate:"required,oneof=text audio video document"`
	MessageContent string `json:"messageContent" validate:"required,max=5000"`
}

// TermsRequest новое пользовательское соглашение
type TermsRequest struct {
	Terms         string `json:"terms" validate:"required"`
	UseAndLicense string `json:"useAndlicense" validate:"required"`
}

// PaymentMethodRequest реквизиты для получения оплаты
type PaymentMethodRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required,numeric,max=34"`
	AccountName   string `json:"accountName" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
}

// Page страница списка
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}
