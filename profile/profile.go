package profile

// UserProfile is the principal returned by the tenant web API. Picture is filled
// in by a second request once the person image has been fetched.
type UserProfile struct {
	FullName     string `json:"FullName"`
	Associate    string `json:"Associate"`
	EMailAddress string `json:"EMailAddress"`
	AssociateID  int    `json:"AssociateId"`
	PersonID     int    `json:"PersonId"`
	ContactID    int    `json:"ContactId"`
	Name         string `json:"name,omitempty"`
	GivenName    string `json:"given_name,omitempty"`
	FamilyName   string `json:"family_name,omitempty"`
	Picture      string `json:"picture,omitempty"`
}
