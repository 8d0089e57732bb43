package transport

import (
	"encoding/json"

	"github.com/Skotchmaster/inventory/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"     form:"name"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

// UpdateUserRequest fields left nil keep their stored value.
type UpdateUserRequest struct {
	Name  *string `json:"name"  form:"name"`
	Phone *string `json:"phone" form:"phone"`
	Bio   *string `json:"bio"   form:"bio"`
	Photo *string `json:"photo" form:"photo"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" form:"password"`
}

type ContactRequest struct {
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// Quantity and price arrive as numbers in JSON bodies and as strings in multipart forms.
type CreateProductRequest struct {
	Name        string      `json:"name"        form:"name"`
	SKU         string      `json:"sku"         form:"sku"`
	Category    string      `json:"category"    form:"category"`
	Quantity    json.Number `json:"quantity"    form:"quantity"`
	Price       json.Number `json:"price"       form:"price"`
	Description string      `json:"description" form:"description"`
}

// PatchProductRequest treats empty fields as not supplied.
type PatchProductRequest struct {
	Name        string      `json:"name"        form:"name"`
	SKU         string      `json:"sku"         form:"sku"`
	Category    string      `json:"category"    form:"category"`
	Quantity    json.Number `json:"quantity"    form:"quantity"`
	Price       json.Number `json:"price"       form:"price"`
	Description string      `json:"description" form:"description"`
}

type Profile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
}

type AuthResponse struct {
	Profile
	Token string `json:"token"`
}

type MessageResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
}

type SearchMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type SearchResponse struct {
	Data []models.Product `json:"data"`
	Meta SearchMeta       `json:"meta"`
}

func ProfileOf(u *models.User) Profile {
	return Profile{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Phone: u.Phone,
		Bio:   u.Bio,
	}
}
