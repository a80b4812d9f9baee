package stores

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/usershell/pkg/api"
	"github.com/vango-dev/usershell/pkg/reactive"
)

// UserStatus is the load state of the user record.
type UserStatus string

const (
	UserUnloaded UserStatus = "unloaded"
	UserLoading  UserStatus = "loading"
	UserLoaded   UserStatus = "loaded"
	UserErrored  UserStatus = "errored"
)

// UserState is the state of the user store.
type UserState struct {
	Status UserStatus
	Info   *api.UserInfo

	// Loading is true while any request of the store is in flight.
	Loading bool

	// Error holds the message of the last failed request.
	Error string
}

// UserAPI is the backend used by UserStore.
type UserAPI interface {
	GetUserInfo(ctx context.Context) (*api.UserInfo, error)
	UpdateUserInfo(ctx context.Context, patch api.UserPatch) (*api.UserInfo, error)
	UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Fallback messages for errors without text.
const (
	msgFetchFailed  = "failed to load user info"
	msgUpdateFailed = "failed to update user info"
	msgAvatarFailed = "failed to update avatar"
)

// UserStore caches the signed-in user's record.
//
// Concurrent non-forced fetches share one request. Among forced fetches
// the most recently started one wins: older results are returned to their
// callers but never stored.
type UserStore struct {
	view[UserState]

	api    UserAPI
	logger *zap.Logger
	group  singleflight.Group

	// generation increases with every fetch start and every Clear.
	generation atomic.Uint64

	mu       sync.Mutex
	inflight int

	isLoggedIn  *reactive.Computed[UserState, bool]
	displayName *reactive.Computed[UserState, string]
}

// NewUserStore creates an unloaded user store.
func NewUserStore(backend UserAPI, logger *zap.Logger, opts ...reactive.Option) *UserStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := reactive.New("UserStore", UserState{Status: UserUnloaded},
		append([]reactive.Option{reactive.WithLogger(logger)}, opts...)...)

	return &UserStore{
		view:   view[UserState]{store: store},
		api:    backend,
		logger: logger.With(zap.String("store", "UserStore")),
		isLoggedIn: reactive.NewComputed(store, func(s UserState) bool {
			return s.Info != nil
		}),
		displayName: reactive.NewComputed(store, func(s UserState) string {
			if s.Info == nil {
				return ""
			}
			return s.Info.DisplayName()
		}),
	}
}

// Info returns a copy of the cached record, or nil.
func (u *UserStore) Info() *api.UserInfo {
	return cloneInfo(u.Get().Info)
}

// IsLoggedIn reports whether a record is cached.
func (u *UserStore) IsLoggedIn() bool {
	return u.isLoggedIn.Get()
}

// DisplayName returns the cached username, or "".
func (u *UserStore) DisplayName() string {
	return u.displayName.Get()
}

// Fetch returns the user record. Without force, a cached record is
// returned with no request, including while a refresh is in flight. A
// store in the errored state always refetches.
func (u *UserStore) Fetch(ctx context.Context, force bool) (*api.UserInfo, error) {
	if !force {
		if s := u.Get(); s.Info != nil && s.Status != UserErrored {
			return cloneInfo(s.Info), nil
		}
		v, err, shared := u.group.Do("user/info", func() (any, error) {
			return u.load(ctx)
		})
		if shared {
			u.logger.Debug("joined in-flight fetch")
		}
		if err != nil {
			return nil, err
		}
		return cloneInfo(v.(*api.UserInfo)), nil
	}
	return u.load(ctx)
}

// load fetches the record and applies it if no newer fetch started since.
func (u *UserStore) load(ctx context.Context) (*api.UserInfo, error) {
	gen := u.generation.Add(1)
	u.begin("fetch", func(s *UserState) {
		s.Status = UserLoading
	})
	defer u.end()

	info, err := u.api.GetUserInfo(ctx)
	if err != nil {
		u.store.Update("fetch/error", func(s *UserState) {
			if u.generation.Load() != gen {
				return
			}
			s.Status = UserErrored
			s.Error = errorMessage(err, msgFetchFailed)
		})
		return nil, err
	}

	applied := u.store.Update("fetch/done", func(s *UserState) {
		if u.generation.Load() != gen {
			return
		}
		s.Status = UserLoaded
		s.Info = cloneInfo(info)
		s.Error = ""
	})
	if !applied && u.generation.Load() != gen {
		u.logger.Debug("discarded stale fetch result", zap.Uint64("generation", gen))
	}
	return info, nil
}

// Update sends patch and replaces the cached record with the server's
// canonical record.
func (u *UserStore) Update(ctx context.Context, patch api.UserPatch) (*api.UserInfo, error) {
	u.begin("update", nil)
	defer u.end()

	info, err := u.api.UpdateUserInfo(ctx, patch)
	if err != nil {
		u.store.Update("update/error", func(s *UserState) {
			s.Error = errorMessage(err, msgUpdateFailed)
		})
		return nil, err
	}

	u.store.Update("update/done", func(s *UserState) {
		s.Status = UserLoaded
		s.Info = cloneInfo(info)
		s.Error = ""
	})
	return info, nil
}

// UpdateAvatar uploads an image and points the cached record at it.
func (u *UserStore) UpdateAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	u.begin("updateAvatar", nil)
	defer u.end()

	url, err := u.api.UploadAvatar(ctx, filename, r)
	if err != nil {
		u.store.Update("updateAvatar/error", func(s *UserState) {
			s.Error = errorMessage(err, msgAvatarFailed)
		})
		return "", err
	}

	u.store.Update("updateAvatar/done", func(s *UserState) {
		if s.Info != nil {
			info := s.Info.Clone()
			info.Avatar = url
			s.Info = &info
		}
	})
	return url, nil
}

// MergeLocal shallow-merges patch into the cached record without a
// request. It does nothing when no record is cached.
func (u *UserStore) MergeLocal(patch api.UserPatch) {
	u.store.Update("mergeLocal", func(s *UserState) {
		if s.Info == nil {
			return
		}
		info := patch.Apply(*s.Info)
		s.Info = &info
	})
}

// Clear forgets the cached record and error. Results of fetches already
// in flight are discarded.
func (u *UserStore) Clear() {
	u.generation.Add(1)
	u.store.Update("clear", func(s *UserState) {
		s.Status = UserUnloaded
		s.Info = nil
		s.Error = ""
	})
}

// ClearError drops the error message.
func (u *UserStore) ClearError() {
	u.store.Update("clearError", func(s *UserState) {
		s.Error = ""
	})
}

// begin marks a request in flight and clears the last error.
func (u *UserStore) begin(action string, fn func(*UserState)) {
	u.mu.Lock()
	u.inflight++
	u.mu.Unlock()

	u.store.Update(action+"/start", func(s *UserState) {
		s.Loading = true
		s.Error = ""
		if fn != nil {
			fn(s)
		}
	})
}

// end clears the loading flag once no request is in flight.
func (u *UserStore) end() {
	u.mu.Lock()
	u.inflight--
	idle := u.inflight == 0
	u.mu.Unlock()

	if idle {
		u.store.Update("loading/done", func(s *UserState) {
			u.mu.Lock()
			defer u.mu.Unlock()
			if u.inflight == 0 {
				s.Loading = false
			}
		})
	}
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func cloneInfo(info *api.UserInfo) *api.UserInfo {
	if info == nil {
		return nil
	}
	c := info.Clone()
	return &c
}
