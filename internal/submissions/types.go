package submissions

import (
	"time"

	"github.com/starsign-web/starsign/internal/zodiac"
)

// Retention defaults: stores keep the newest DefaultRetentionCap records
// and the public read path serves at most DefaultRecentLimit of them.
const (
	DefaultRetentionCap = 100
	DefaultRecentLimit  = 10
)

// Submission is one accepted form entry. Records are immutable once
// created; they leave the system only by falling outside the retention
// window.
type Submission struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DateOfBirth time.Time   `json:"date_of_birth"`
	Sign        zodiac.Sign `json:"sign"`
	CreatedAt   time.Time   `json:"created_at"`
}

// New builds a record from already-validated parts. The identifier and
// timestamp are passed in so record construction never reads ambient
// state; the birth date is normalized to a UTC calendar date with no
// time-of-day component.
func New(id, name string, dateOfBirth time.Time, sign zodiac.Sign, createdAt time.Time) Submission {
	return Submission{
		ID:          id,
		Name:        name,
		DateOfBirth: time.Date(dateOfBirth.Year(), dateOfBirth.Month(), dateOfBirth.Day(), 0, 0, 0, 0, time.UTC),
		Sign:        sign,
		CreatedAt:   createdAt.UTC(),
	}
}
