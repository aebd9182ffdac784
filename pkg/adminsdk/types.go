package adminsdk

import "time"

// ErrorResponse is the standard error envelope returned by the API.
type ErrorResponse struct {
	// Error is a short machine-readable code (e.g. "invalid_request")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`

	// Fields contains field-specific validation errors when present
	Fields map[string]string `json:"fields,omitempty"`
}

// ============================================================================
// Auth
// ============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// TOTPCode is required when the account has TOTP enabled
	TOTPCode string `json:"totp_code,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned from login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ============================================================================
// Registration and invitations
// ============================================================================

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	InviteToken string `json:"invite_token"`
}

type InviteCreateRequest struct {
	Email string `json:"email"`

	// Days is how long the invitation stays valid (1-365, default 7)
	Days int `json:"days,omitempty"`
}

// Invitation statuses as reported by the API.
const (
	InvitationStatusPending = "pending"
	InvitationStatusUsed    = "used"
	InvitationStatusExpired = "expired"
)

type Invitation struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	Status    string     `json:"status"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	UsedBy    *string    `json:"used_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type InvitationList struct {
	Items []Invitation `json:"items"`
}

// ============================================================================
// Users
// ============================================================================

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	TOTPEnabled bool      `json:"totp_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserPage is a paginated user listing.
type UserPage struct {
	Items    []User `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	LastPage int    `json:"last_page"`
}

type UserCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserUpdateRequest resets the password only when the field is set.
type UserUpdateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

// ============================================================================
// Profile and MFA
// ============================================================================

// Profile is the caller's own account, including the permissions granted by
// their role.
type Profile struct {
	User
	Permissions []string `json:"permissions"`
}

type ProfileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type MFAEnrollResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

type MFACodeRequest struct {
	Code string `json:"code"`
}

// ============================================================================
// Coaches and customers
// ============================================================================

type Coach struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	CoachNumber string    `json:"coach_number"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Avatar      *string   `json:"avatar,omitempty"`
	Bio         string    `json:"bio"`
	Specialties []string  `json:"specialties"`
	Badges      []string  `json:"badges"`
	Languages   []string  `json:"languages"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CoachRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Bio         string   `json:"bio,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	Badges      []string `json:"badges,omitempty"`
	Languages   []string `json:"languages,omitempty"`
}

type CoachList struct {
	Items []Coach `json:"items"`
}

type Customer struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	CustomerNumber string    `json:"customer_number"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Avatar         *string   `json:"avatar,omitempty"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

type CustomerList struct {
	Items []Customer `json:"items"`
}

// ============================================================================
// System
// ============================================================================

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
