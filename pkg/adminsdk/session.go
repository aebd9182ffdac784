package adminsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Session is an authenticated view of the API. It does not auto-refresh; call
// Refresh when the access token expires.
type Session struct {
	client *Client
	tokens TokenResponse
}

func (s *Session) AccessToken() string  { return s.tokens.AccessToken }
func (s *Session) RefreshToken() string { return s.tokens.RefreshToken }

func (s *Session) do(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	return s.client.do(ctx, method, path, s.tokens.AccessToken, body, target, expectedStatus)
}

// Refresh rotates the refresh token and replaces the session's token pair.
func (s *Session) Refresh(ctx context.Context) error {
	var tokens TokenResponse
	err := s.client.do(ctx, http.MethodPost, "/v1/auth/refresh", "",
		RefreshRequest{RefreshToken: s.tokens.RefreshToken}, &tokens, http.StatusOK)
	if err != nil {
		return err
	}
	s.tokens = tokens
	return nil
}

// Logout revokes the session's refresh token.
func (s *Session) Logout(ctx context.Context) error {
	return s.client.do(ctx, http.MethodPost, "/v1/auth/logout", "",
		LogoutRequest{RefreshToken: s.tokens.RefreshToken}, nil, http.StatusNoContent)
}

// ============================================================================
// Invitations
// ============================================================================

func (s *Session) CreateInvite(ctx context.Context, req InviteCreateRequest) (Invitation, error) {
	var inv Invitation
	err := s.do(ctx, http.MethodPost, "/v1/invites", req, &inv, http.StatusCreated)
	return inv, err
}

func (s *Session) ListInvites(ctx context.Context) (InvitationList, error) {
	var list InvitationList
	err := s.do(ctx, http.MethodGet, "/v1/invites", nil, &list, http.StatusOK)
	return list, err
}

// ============================================================================
// Users
// ============================================================================

// ListUsersParams filters and orders user listings. Zero values are omitted.
type ListUsersParams struct {
	Search    string
	Sort      string
	Direction string
	Page      int
	PerPage   int
}

func (p ListUsersParams) encode() string {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Direction != "" {
		q.Set("direction", p.Direction)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (s *Session) ListUsers(ctx context.Context, p ListUsersParams) (UserPage, error) {
	var page UserPage
	err := s.do(ctx, http.MethodGet, "/v1/users"+p.encode(), nil, &page, http.StatusOK)
	return page, err
}

func (s *Session) GetUser(ctx context.Context, id string) (User, error) {
	var user User
	err := s.do(ctx, http.MethodGet, "/v1/users/"+id, nil, &user, http.StatusOK)
	return user, err
}

func (s *Session) CreateUser(ctx context.Context, req UserCreateRequest) (User, error) {
	var user User
	err := s.do(ctx, http.MethodPost, "/v1/users", req, &user, http.StatusCreated)
	return user, err
}

func (s *Session) UpdateUser(ctx context.Context, id string, req UserUpdateRequest) (User, error) {
	var user User
	err := s.do(ctx, http.MethodPut, "/v1/users/"+id, req, &user, http.StatusOK)
	return user, err
}

func (s *Session) DeleteUser(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/users/"+id, nil, nil, http.StatusNoContent)
}

func (s *Session) BulkDeleteUsers(ctx context.Context, ids []string) (BulkDeleteResponse, error) {
	var resp BulkDeleteResponse
	err := s.do(ctx, http.MethodPost, "/v1/users/bulk-delete", BulkDeleteRequest{IDs: ids}, &resp, http.StatusOK)
	return resp, err
}

// ExportUsersCSV downloads the user export and returns the raw CSV bytes.
func (s *Session) ExportUsersCSV(ctx context.Context, p ListUsersParams) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.client.url("/v1/users/export"+p.encode()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.tokens.AccessToken)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: "unexpected_response"}
	}
	return io.ReadAll(resp.Body)
}

// ============================================================================
// Profile and MFA
// ============================================================================

func (s *Session) GetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	err := s.do(ctx, http.MethodGet, "/v1/profile", nil, &profile, http.StatusOK)
	return profile, err
}

func (s *Session) UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (Profile, error) {
	var profile Profile
	err := s.do(ctx, http.MethodPut, "/v1/profile", req, &profile, http.StatusOK)
	return profile, err
}

func (s *Session) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return s.do(ctx, http.MethodPost, "/v1/profile/password", req, nil, http.StatusNoContent)
}

func (s *Session) EnrollMFA(ctx context.Context) (MFAEnrollResponse, error) {
	var resp MFAEnrollResponse
	err := s.do(ctx, http.MethodPost, "/v1/mfa/totp/enroll", nil, &resp, http.StatusOK)
	return resp, err
}

func (s *Session) ActivateMFA(ctx context.Context, code string) error {
	return s.do(ctx, http.MethodPost, "/v1/mfa/totp/activate", MFACodeRequest{Code: code}, nil, http.StatusNoContent)
}

func (s *Session) DisableMFA(ctx context.Context, code string) error {
	return s.do(ctx, http.MethodDelete, "/v1/mfa/totp", MFACodeRequest{Code: code}, nil, http.StatusNoContent)
}

// ============================================================================
// Coaches and customers
// ============================================================================

func (s *Session) ListCoaches(ctx context.Context) (CoachList, error) {
	var list CoachList
	err := s.do(ctx, http.MethodGet, "/v1/coaches", nil, &list, http.StatusOK)
	return list, err
}

func (s *Session) GetCoach(ctx context.Context, id string) (Coach, error) {
	var coach Coach
	err := s.do(ctx, http.MethodGet, "/v1/coaches/"+id, nil, &coach, http.StatusOK)
	return coach, err
}

func (s *Session) CreateCoach(ctx context.Context, req CoachRequest) (Coach, error) {
	var coach Coach
	err := s.do(ctx, http.MethodPost, "/v1/coaches", req, &coach, http.StatusCreated)
	return coach, err
}

func (s *Session) UpdateCoach(ctx context.Context, id string, req CoachRequest) (Coach, error) {
	var coach Coach
	err := s.do(ctx, http.MethodPut, "/v1/coaches/"+id, req, &coach, http.StatusOK)
	return coach, err
}

func (s *Session) DeleteCoach(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/coaches/"+id, nil, nil, http.StatusNoContent)
}

// UploadCoachAvatar sends a multipart avatar upload for a coach.
func (s *Session) UploadCoachAvatar(ctx context.Context, id, filename string, image io.Reader) (Coach, error) {
	var coach Coach
	err := s.upload(ctx, "/v1/coaches/"+id+"/avatar", filename, image, &coach)
	return coach, err
}

func (s *Session) RemoveCoachAvatar(ctx context.Context, id string) (Coach, error) {
	var coach Coach
	err := s.do(ctx, http.MethodDelete, "/v1/coaches/"+id+"/avatar", nil, &coach, http.StatusOK)
	return coach, err
}

func (s *Session) ListCustomers(ctx context.Context) (CustomerList, error) {
	var list CustomerList
	err := s.do(ctx, http.MethodGet, "/v1/customers", nil, &list, http.StatusOK)
	return list, err
}

func (s *Session) GetCustomer(ctx context.Context, id string) (Customer, error) {
	var customer Customer
	err := s.do(ctx, http.MethodGet, "/v1/customers/"+id, nil, &customer, http.StatusOK)
	return customer, err
}

func (s *Session) CreateCustomer(ctx context.Context, req CustomerRequest) (Customer, error) {
	var customer Customer
	err := s.do(ctx, http.MethodPost, "/v1/customers", req, &customer, http.StatusCreated)
	return customer, err
}

func (s *Session) UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (Customer, error) {
	var customer Customer
	err := s.do(ctx, http.MethodPut, "/v1/customers/"+id, req, &customer, http.StatusOK)
	return customer, err
}

func (s *Session) DeleteCustomer(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/customers/"+id, nil, nil, http.StatusNoContent)
}

func (s *Session) UploadCustomerAvatar(ctx context.Context, id, filename string, image io.Reader) (Customer, error) {
	var customer Customer
	err := s.upload(ctx, "/v1/customers/"+id+"/avatar", filename, image, &customer)
	return customer, err
}

func (s *Session) RemoveCustomerAvatar(ctx context.Context, id string) (Customer, error) {
	var customer Customer
	err := s.do(ctx, http.MethodDelete, "/v1/customers/"+id+"/avatar", nil, &customer, http.StatusOK)
	return customer, err
}

// ExportCustomersCSV downloads the caller's customer export as raw CSV bytes.
func (s *Session) ExportCustomersCSV(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.client.url("/v1/customers/export"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.tokens.AccessToken)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: "unexpected_response"}
	}
	return io.ReadAll(resp.Body)
}

func (s *Session) upload(ctx context.Context, path, filename string, image io.Reader, target any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("avatar", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, image); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.url(path), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.tokens.AccessToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Code: "unexpected_response"}
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
