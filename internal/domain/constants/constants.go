package constants

// Notification providers
const (
	NotificationProviderTelegram = "telegram"
	NotificationProviderWebhook  = "webhook"
	NotificationProviderNoop     = "noop"
)

// Pagination
const (
	UsersPageSize  = 50
	OrdersPageSize = 60
)
