package constants

// Delivery kinds - what triggered an outbound message
const (
	DeliveryKindStartup   = "startup"
	DeliveryKindHeartbeat = "heartbeat"
	DeliveryKindDigest    = "digest"
	DeliveryKindTest      = "test"
	DeliveryKindCommand   = "command"
)

// Delivery statuses
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// IsValidDeliveryKind reports whether kind is one of the known delivery kinds
func IsValidDeliveryKind(kind string) bool {
	switch kind {
	case DeliveryKindStartup, DeliveryKindHeartbeat, DeliveryKindDigest,
		DeliveryKindTest, DeliveryKindCommand:
		return true
	}
	return false
}
