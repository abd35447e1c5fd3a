package models

// EntityType selects which table an operation targets
type EntityType string

const (
	EntityApplication EntityType = "application"
	EntityServer      EntityType = "server"
)

func (e EntityType) String() string {
	return string(e)
}

// UnknownApplicationName is shown for servers whose application reference no
// longer resolves
const UnknownApplicationName = "Unknown"

// ErrorResponse is the body returned for every failed API request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
