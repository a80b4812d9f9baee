package i18n

import "golang.org/x/text/language"

// Message keys.
const (
	KeyAppTitle         = "app.title"
	KeyLoading          = "common.loading"
	KeyErrorPrefix      = "common.error"
	KeyThemeCurrent     = "theme.current"
	KeyThemeLight       = "theme.light"
	KeyThemeDark        = "theme.dark"
	KeyLocaleCurrent    = "locale.current"
	KeyCounterValue     = "counter.value"
	KeyCounterHistory   = "counter.history"
	KeyProfileTitle     = "profile.title"
	KeyProfileID        = "profile.id"
	KeyProfileUsername  = "profile.username"
	KeyProfileEmail     = "profile.email"
	KeyProfileRole      = "profile.role"
	KeyProfileAvatar    = "profile.avatar"
	KeyProfileUpdated   = "profile.updated"
	KeyNotLoggedIn      = "profile.notLoggedIn"
	KeyAvatarUpdated    = "avatar.updated"
	KeyPasswordChanged  = "password.changed"
	KeyLoginSaved       = "login.saved"
	KeyLogoutDone       = "logout.done"
	KeyUsersTotal       = "users.total"
	KeyUserDeleted      = "users.deleted"
	KeyEmptyPlaceholder = "common.empty"
)

// messages holds the catalog source, per language.
var messages = map[language.Tag]map[string]string{
	language.SimplifiedChinese: {
		KeyAppTitle:         "用户中心",
		KeyLoading:          "加载中...",
		KeyErrorPrefix:      "错误：%s",
		KeyThemeCurrent:     "当前主题：%s",
		KeyThemeLight:       "浅色",
		KeyThemeDark:        "深色",
		KeyLocaleCurrent:    "当前语言：%s",
		KeyCounterValue:     "计数：%d（双倍 %d）",
		KeyCounterHistory:   "最近变化：%s",
		KeyProfileTitle:     "个人资料",
		KeyProfileID:        "编号",
		KeyProfileUsername:  "用户名",
		KeyProfileEmail:     "邮箱",
		KeyProfileRole:      "角色",
		KeyProfileAvatar:    "头像",
		KeyProfileUpdated:   "资料已更新",
		KeyNotLoggedIn:      "未登录",
		KeyAvatarUpdated:    "头像已更新：%s",
		KeyPasswordChanged:  "密码已修改",
		KeyLoginSaved:       "登录凭证已保存",
		KeyLogoutDone:       "已退出登录",
		KeyUsersTotal:       "共 %d 个用户",
		KeyUserDeleted:      "已删除用户 %s",
		KeyEmptyPlaceholder: "无",
	},
	language.English: {
		KeyAppTitle:         "User Center",
		KeyLoading:          "Loading...",
		KeyErrorPrefix:      "Error: %s",
		KeyThemeCurrent:     "Current theme: %s",
		KeyThemeLight:       "Light",
		KeyThemeDark:        "Dark",
		KeyLocaleCurrent:    "Current language: %s",
		KeyCounterValue:     "Count: %d (double %d)",
		KeyCounterHistory:   "Recent changes: %s",
		KeyProfileTitle:     "Profile",
		KeyProfileID:        "ID",
		KeyProfileUsername:  "Username",
		KeyProfileEmail:     "Email",
		KeyProfileRole:      "Role",
		KeyProfileAvatar:    "Avatar",
		KeyProfileUpdated:   "Profile updated",
		KeyNotLoggedIn:      "Not logged in",
		KeyAvatarUpdated:    "Avatar updated: %s",
		KeyPasswordChanged:  "Password changed",
		KeyLoginSaved:       "Login token saved",
		KeyLogoutDone:       "Logged out",
		KeyUsersTotal:       "%d users in total",
		KeyUserDeleted:      "Deleted user %s",
		KeyEmptyPlaceholder: "none",
	},
}
