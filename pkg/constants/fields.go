package constants

// Column names - the snake_case names used in storage and SQL.
const (
	// Shared
	FieldID          = "id"
	FieldCreatedDate = "created_date"

	// Delivery log
	FieldDeliveryKind   = "kind"
	FieldDeliveryChatID = "chat_id"
	FieldDeliveryBody   = "body"
	FieldDeliveryStatus = "status"
	FieldDeliveryError  = "error"

	// Calendar events
	FieldEventTitle    = "title"
	FieldEventCountry  = "country"
	FieldEventDate     = "event_date"
	FieldEventImpact   = "impact"
	FieldEventForecast = "forecast"
	FieldEventPrevious = "previous"
)

// Response envelope keys
const (
	ResponseError = "error"
	FieldMessage  = "message"
)
