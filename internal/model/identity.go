package model

// Identity is the signed-in user as exposed to the frontend. Only its
// presence or absence changes behavior: an absent identity means publishing
// is attributed to the service account after explicit confirmation.
type Identity struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}
