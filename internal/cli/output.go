package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jcallaghan/sessionlink/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *model.User:
		o.printUser(v)
	case model.Capabilities:
		o.printCapabilities(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printUser(u *model.User) {
	fmt.Printf("Logged in as: %s (id %d)\n", u.Name, u.ID)
	if u.Email != "" {
		fmt.Printf("Email: %s\n", u.Email)
	}
	if u.Administrator {
		fmt.Println("Administrator: yes")
	}
}

func (o *Output) printCapabilities(c model.Capabilities) {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}

	fmt.Printf("Registration: %s\n", yesNo(c.RegistrationEnabled))
	fmt.Printf("Email login: %s\n", yesNo(c.EmailLoginEnabled))
	fmt.Printf("Language selection: %s\n", yesNo(c.LanguageSelectionEnabled))
	fmt.Printf("OpenID: %s\n", yesNo(c.OpenIDEnabled))
	fmt.Printf("OpenID forced: %s\n", yesNo(c.OpenIDForced))
	if c.Announcement != "" {
		fmt.Printf("Announcement: %s\n", c.Announcement)
	}
}
