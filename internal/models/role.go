package models

// Role is the access level of a caller, resolved once per request.
type Role int

const (
	RoleGuest Role = iota // RoleGuest is an anonymous caller.
	RoleUser              // RoleUser is a signed-in caller.
	RoleAdmin             // RoleAdmin is a signed-in caller administering at least one hospital.
)

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// MarshalText renders the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Session is the resolved identity of a caller.
type Session struct {
	UID         string   `json:"uid,omitempty"`
	Role        Role     `json:"role"`
	HospitalIDs []string `json:"hospitalIds,omitempty"` // HospitalIDs lists listings administered by UID.
}

// GuestSession is the session of an anonymous caller.
func GuestSession() Session {
	return Session{Role: RoleGuest}
}

// Administers reports whether the session administers the given hospital.
func (s Session) Administers(hospitalID string) bool {
	for _, id := range s.HospitalIDs {
		if id == hospitalID {
			return true
		}
	}

	return false
}
