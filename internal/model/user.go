package model

// User is the authenticated user record returned by the backend.
// Its shape is owned by the backend contract; the client decodes the
// well-known identifying fields and carries everything else in
// Attributes, committing the record into the session store unchanged.
type User struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Administrator bool           `json:"administrator,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}
