package types

const (
	ActionExternalServiceFailed = "external_service_failed"
	ActionAuthoritativeSync     = "authoritative_sync"
	ActionDetailPollFailed      = "detail_poll_failed"
	ActionHandleRestored        = "handle_restored"
	ActionHandleCleared         = "handle_cleared"
	ActionPresenceForcedOnline  = "presence_forced_online"
)
