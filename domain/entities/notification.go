package entities

// ContactNotification is sent to the admin mailbox when a user shares contact details
type ContactNotification struct {
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Conversation string `json:"conversation"`
}
