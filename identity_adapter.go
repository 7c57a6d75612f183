package auth

// userIdentity is the normalized identity view over a credential record.
// It never exposes the stored hash.
type userIdentity struct {
	id          int64
	username    string
	displayName string
	role        UserRole
	groupNumber *int
	active      bool
}

var _ Identity = (*userIdentity)(nil)

// IdentityFromUser builds the identity view handed to token issuance and
// authorization. The raw User row stays behind the repository boundary.
func IdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}

	var group *int
	if user.GroupNumber != nil {
		g := *user.GroupNumber
		group = &g
	}

	return &userIdentity{
		id:          user.ID,
		username:    user.Username,
		displayName: user.FullName,
		role:        user.Role,
		groupNumber: group,
		active:      user.IsActive,
	}
}

func (u *userIdentity) ID() int64           { return u.id }
func (u *userIdentity) Username() string    { return u.username }
func (u *userIdentity) DisplayName() string { return u.displayName }
func (u *userIdentity) Role() UserRole      { return u.role }
func (u *userIdentity) GroupNumber() *int   { return u.groupNumber }
func (u *userIdentity) Active() bool        { return u.active }
