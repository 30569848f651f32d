package newsletter

// SubscribeRequest newsletter sign-up
type SubscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

// SendRequest admin broadcast. HTMLContent may contain {{UNSUBSCRIBE_URL}}.
type SendRequest struct {
	Subject     string `json:"subject" binding:"required"`
	HTMLContent string `json:"htmlContent" binding:"required"`
}

// SubscribeOutcome what a sign-up did
type SubscribeOutcome string

const (
	OutcomeSubscribed  SubscribeOutcome = "subscribed"
	OutcomeResent      SubscribeOutcome = "confirmation_resent"
	OutcomeReactivated SubscribeOutcome = "reactivated"
)

// SubscribeResponse sign-up result
type SubscribeResponse struct {
	Outcome SubscribeOutcome `json:"outcome"`
	Message string           `json:"message"`
}

// SendReport broadcast result; failed deliveries are counted, not retried
type SendReport struct {
	Recipients int      `json:"recipients"`
	Sent       int      `json:"sent"`
	Failed     int      `json:"failed"`
	Batches    int      `json:"batches"`
	FailedTo   []string `json:"failedTo,omitempty"`
}
