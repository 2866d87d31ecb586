package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/weaverhq/weaver/internal/dto"
)

const authPath = "/api/auth"

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, authPath+"/register", req, nil, http.StatusOK)
}

// Login signs in. With useCookies the server sets a persistent session
// cookie, kept in the client's jar, and no tokens are returned. Otherwise
// the returned access token is used for later requests.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest, useCookies bool) (*dto.AccessTokenResponse, error) {
	if useCookies {
		q := url.Values{"useCookies": {"true"}}
		return nil, c.do(ctx, http.MethodPost, authPath+"/login?"+q.Encode(), req, nil, http.StatusNoContent)
	}

	var out dto.AccessTokenResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*dto.AccessTokenResponse, error) {
	var out dto.AccessTokenResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/refresh", dto.RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

// Logout ends the cookie session and forgets any bearer token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, authPath+"/logout", struct{}{}, nil, http.StatusOK)
	c.token = ""
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, authPath+"/forgotPassword", dto.EmailRequest{Email: email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, authPath+"/resetPassword", req, nil)
}

func (c *Client) ResendConfirmationEmail(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, authPath+"/resendConfirmationEmail", dto.EmailRequest{Email: email}, nil)
}

func (c *Client) Info(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, authPath+"/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateInfo(ctx context.Context, req dto.UpdateInfoRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/info", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
