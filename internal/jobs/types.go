package jobs

type JobType string

const (
	// JobUserWelcome delivers a courtesy notice after a successful
	// registration.
	JobUserWelcome JobType = "user_welcome"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobUserWelcome:
		return true
	default:
		return false
	}
}
