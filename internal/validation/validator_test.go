package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"password"`
}

type point struct {
	Coordinates [2]float64 `json:"coordinates" validate:"coordinates"`
}

type rating struct {
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Currency string `json:"currency" validate:"oneof=$ £"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantErr string
	}{
		{
			name:  "valid signup",
			input: &signupRequest{Name: "Alice", Email: "alice@example.com", Password: "long-enough"},
		},
		{
			name:    "missing name",
			input:   &signupRequest{Email: "alice@example.com", Password: "long-enough"},
			wantErr: "name is required",
		},
		{
			name:    "bad email",
			input:   &signupRequest{Name: "Alice", Email: "alice", Password: "long-enough"},
			wantErr: "email must be a valid email",
		},
		{
			name:    "short password",
			input:   &signupRequest{Name: "Alice", Email: "alice@example.com", Password: "short"},
			wantErr: "password must be 8-128 characters long",
		},
		{
			name:  "valid coordinates",
			input: &point{Coordinates: [2]float64{3.3792, 6.5244}},
		},
		{
			name:  "zero coordinates are valid",
			input: &point{},
		},
		{
			name:    "latitude out of range",
			input:   &point{Coordinates: [2]float64{10, 95}},
			wantErr: "coordinates must be [longitude, latitude]",
		},
		{
			name:    "rating too high",
			input:   &rating{Rating: 6, Currency: "$"},
			wantErr: "rating must be at most 5",
		},
		{
			name:    "unknown currency",
			input:   &rating{Rating: 3, Currency: "€"},
			wantErr: "currency must be one of [$ £]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("bob@example.com", "required,email"))
	assert.Error(t, ValidateVar("bob", "required,email"))
	assert.Error(t, ValidateVar("", "required"))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errMsg   string
	}{
		{name: "valid", password: "12345678"},
		{name: "empty", password: "", errMsg: "password cannot be empty"},
		{name: "too short", password: "1234567", errMsg: "at least 8"},
		{name: "too long", password: string(make([]byte, 129)), errMsg: "must not exceed 128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
