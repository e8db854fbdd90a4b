package models

import "time"

// Sign-in providers recorded on a user.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User captures application-facing fields for an authenticated identity
// together with the dashboard counters.
type User struct {
	ID                  string    `json:"id" bson:"_id"`
	Email               string    `json:"email" bson:"email"`
	DisplayName         string    `json:"displayName" bson:"displayName"`
	PhotoURL            string    `json:"photoURL" bson:"photoURL"`
	Provider            string    `json:"provider" bson:"provider"`
	PasswordHash        string    `json:"-" bson:"passwordHash"`
	OverallProgress     int       `json:"overallProgress" bson:"overallProgress"`
	CompletedMilestones int       `json:"completedMilestones" bson:"completedMilestones"`
	AIAssistantQueries  int       `json:"aiAssistantQueries" bson:"aiAssistantQueries"`
	ActiveStreak        int       `json:"activeStreak" bson:"activeStreak"`
	LastLoginDate       time.Time `json:"lastLoginDate" bson:"lastLoginDate"`
	CreatedAt           time.Time `json:"createdAt" bson:"createdAt"`
}

// NextStreak returns the streak after a sign-in at now. Days are compared in UTC.
func (u User) NextStreak(now time.Time) int {
	if u.LastLoginDate.IsZero() || u.ActiveStreak <= 0 {
		return 1
	}
	last := utcDay(u.LastLoginDate)
	today := utcDay(now)
	switch {
	case today.Equal(last):
		return u.ActiveStreak
	case today.Equal(last.AddDate(0, 0, 1)):
		return u.ActiveStreak + 1
	case today.Before(last):
		// Clock skew between replicas; keep the current value.
		return u.ActiveStreak
	default:
		return 1
	}
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
