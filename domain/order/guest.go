package order

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail basic syntactic email check
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// GuestDetails owner of a guest order
type GuestDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Validate requires first and last name plus a syntactically valid email
func (g GuestDetails) Validate() error {
	if strings.TrimSpace(g.FirstName) == "" || strings.TrimSpace(g.LastName) == "" {
		return NewInvalidGuestDetailsError("name", "First name and last name are required")
	}
	email := strings.TrimSpace(g.Email)
	if email == "" {
		return NewInvalidGuestDetailsError("email", "Email is required")
	}
	if !ValidEmail(email) {
		return NewInvalidGuestDetailsError("email", "Please provide a valid email address")
	}
	return nil
}

func (g GuestDetails) normalized() GuestDetails {
	return GuestDetails{
		FirstName: strings.TrimSpace(g.FirstName),
		LastName:  strings.TrimSpace(g.LastName),
		Email:     strings.TrimSpace(g.Email),
		Phone:     strings.TrimSpace(g.Phone),
	}
}

// ============================================================================
// Tracking IDs
// ============================================================================

const (
	guestTrackingPrefix = "GUEST-"
	userTrackingPrefix  = "USER-"
	trackingSuffixLen   = 9
	trackingAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var guestTrackingPattern = regexp.MustCompile(`^GUEST-\d+-[0-9a-z]{9}$`)

// TrackingIDGenerator produces guest tracking ids
type TrackingIDGenerator interface {
	NewGuestTrackingID() string
}

// RandomTrackingIDGenerator GUEST-<unix millis>-<9 base36 chars>
type RandomTrackingIDGenerator struct {
	Now func() time.Time
}

func (g RandomTrackingIDGenerator) NewGuestTrackingID() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return GuestTrackingID(now(), randomSuffix())
}

// GuestTrackingID formats a guest tracking id
func GuestTrackingID(at time.Time, suffix string) string {
	return guestTrackingPrefix + strconv.FormatInt(at.UnixMilli(), 10) + "-" + suffix
}

// UserTrackingID tracking id of an authenticated order
func UserTrackingID(orderID string) string {
	return userTrackingPrefix + orderID
}

// IsGuestTrackingID matches the guest tracking id format
func IsGuestTrackingID(id string) bool {
	return guestTrackingPattern.MatchString(id)
}

func randomSuffix() string {
	var b strings.Builder
	limit := big.NewInt(int64(len(trackingAlphabet)))
	for i := 0; i < trackingSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			n = big.NewInt(time.Now().UnixNano() % int64(len(trackingAlphabet)))
		}
		b.WriteByte(trackingAlphabet[n.Int64()])
	}
	return b.String()
}
