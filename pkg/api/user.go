package api

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/vango-dev/usershell/internal/errors"
	"github.com/vango-dev/usershell/pkg/httpclient"
)

// Endpoint paths.
const (
	PathUserInfo       = "/user/info"
	PathAvatar         = "/user/avatar"
	PathChangePassword = "/user/change-password"
	PathUserList       = "/user/list"
	PathUser           = "/user/"
)

// AvatarField is the multipart field name of avatar uploads.
const AvatarField = "avatar"

// Client calls the user endpoints.
type Client struct {
	http *httpclient.Client
}

// New wraps an HTTP client.
func New(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// GetUserInfo returns the current user.
func (c *Client) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.http.Get(ctx, PathUserInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UpdateUserInfo sends patch and returns the server's canonical record.
func (c *Client) UpdateUserInfo(ctx context.Context, patch UserPatch) (*UserInfo, error) {
	var info UserInfo
	if err := c.http.Put(ctx, PathUserInfo, patch, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UploadAvatar uploads an image and returns its URL.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	var res AvatarResult
	if err := c.http.PostMultipart(ctx, PathAvatar, AvatarField, filename, r, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

// ChangePassword changes the current user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.http.Post(ctx, PathChangePassword, PasswordChange{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
}

// ListUsers returns one page of users. Zero-valued params are omitted.
func (c *Client) ListUsers(ctx context.Context, params ListParams) (*UserList, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.Keyword != "" {
		q.Set("keyword", params.Keyword)
	}

	var list UserList
	if err := c.http.Get(ctx, PathUserList, q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetUser returns the user with the given ID.
func (c *Client) GetUser(ctx context.Context, id string) (*UserInfo, error) {
	if id == "" {
		return nil, errors.New("E040")
	}
	var info UserInfo
	if err := c.http.Get(ctx, PathUser+url.PathEscape(id), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteUser deletes the user with the given ID.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("E040")
	}
	return c.http.Delete(ctx, PathUser+url.PathEscape(id), nil)
}
