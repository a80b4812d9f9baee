package api

import (
	"encoding/json"
	"maps"
)

// UserInfo is the user record returned by the backend. Fields the client
// does not know are kept in Extra and written back unchanged.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Avatar   string `json:"avatar,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// userInfoFields is UserInfo without its JSON methods.
type userInfoFields UserInfo

var userInfoKeys = []string{"id", "username", "email", "role", "avatar"}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (u *UserInfo) UnmarshalJSON(data []byte) error {
	var known userInfoFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range userInfoKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}

	*u = UserInfo(known)
	u.Extra = all
	return nil
}

// MarshalJSON encodes known fields merged over Extra.
func (u UserInfo) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(userInfoFields(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return known, nil
	}

	out := make(map[string]json.RawMessage, len(u.Extra)+len(userInfoKeys))
	maps.Copy(out, u.Extra)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	maps.Copy(out, fields)
	return json.Marshal(out)
}

// Clone returns a copy that shares nothing with u.
func (u UserInfo) Clone() UserInfo {
	u.Extra = maps.Clone(u.Extra)
	return u
}

// DisplayName returns the username, falling back to the ID.
func (u UserInfo) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}

// UserPatch is a partial UserInfo. Nil fields are not sent.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type userPatchFields UserPatch

// MarshalJSON encodes set fields merged over Extra.
func (p UserPatch) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(userPatchFields(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return known, nil
	}

	out := maps.Clone(p.Extra)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	maps.Copy(out, fields)
	return json.Marshal(out)
}

// IsEmpty reports whether the patch sets nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.Role == nil && p.Avatar == nil && len(p.Extra) == 0
}

// Apply returns u with the set fields of p shallow-merged in.
func (p UserPatch) Apply(u UserInfo) UserInfo {
	u = u.Clone()
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if len(p.Extra) > 0 {
		if u.Extra == nil {
			u.Extra = make(map[string]json.RawMessage, len(p.Extra))
		}
		maps.Copy(u.Extra, p.Extra)
	}
	return u
}

// String returns a pointer to s, for building patches.
func String(s string) *string {
	return &s
}

// ListParams filters GET /user/list.
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string
}

// UserList is one page of users.
type UserList struct {
	List  []UserInfo `json:"list"`
	Total int        `json:"total"`
}

// PasswordChange is the body of POST /user/change-password.
type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// AvatarResult is the response of POST /user/avatar.
type AvatarResult struct {
	URL string `json:"url"`
}
