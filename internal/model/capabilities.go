package model

// Capabilities is the snapshot of server configuration flags consumed
// by the login orchestrator. The values are injected at orchestration
// start and never mutated by the client.
type Capabilities struct {
	RegistrationEnabled      bool   `json:"registration"`
	LanguageSelectionEnabled bool   `json:"languageSelection"`
	EmailLoginEnabled        bool   `json:"emailEnabled"`
	OpenIDEnabled            bool   `json:"openIdEnabled"`
	OpenIDForced             bool   `json:"openIdForce"`
	Announcement             string `json:"announcement,omitempty"`
}
