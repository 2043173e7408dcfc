package user

// Grant represents a single permission a participant receives inside a conference session
type Grant uint

const (
	GrantSubscribe Grant = 1 << iota
	GrantPublish
	GrantPublishData
)

// Grants represents the container of conference grants.
// It provides methods Has and With to check and set certain grants.
type Grants uint

// EmptyGrants provides a grant container with no grants set
const EmptyGrants Grants = 0

// Has checks if the grant container has all the given grants set
func (cur Grants) Has(grants ...Grant) bool {
	for _, grant := range grants {
		if uint(cur)&uint(grant) == 0 {
			return false
		}
	}
	return true
}

// With returns a new grant container with all given and current grants set
func (cur Grants) With(grants ...Grant) Grants {
	val := uint(cur)
	for _, grant := range grants {
		val |= uint(grant)
	}
	return Grants(val)
}
