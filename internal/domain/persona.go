package domain

// Role tags one side of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Persona is the identity the model impersonates for one generation.
// It is owned by the calling layer and passed by value per request.
type Persona struct {
	Name        string   `json:"name"`
	Age         int      `json:"age,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	Traits      []string `json:"traits,omitempty"`
}

// UserProfile describes the human counterpart, used to personalize prompts.
type UserProfile struct {
	Name     string `json:"name"`
	Gender   string `json:"gender,omitempty"`
	Location string `json:"location,omitempty"`
}

// Turn is one message in a conversation transcript. The nested content
// object mirrors the client's stored message shape.
type Turn struct {
	Role    Role        `json:"role"`
	Content TurnContent `json:"content"`
}

type TurnContent struct {
	Type       string `json:"type"`
	Text       string `json:"content"`
	SenderName string `json:"senderName,omitempty"`
}

// Mode distinguishes a private one-on-one chat from a group chat.
// The prompt assembler switches on it exhaustively.
type Mode int

const (
	ModeIndividual Mode = iota
	ModeGroup
)

// GenerationRequest is the core's unit of work: everything needed to
// produce one persona reply. Created per call, discarded after.
type GenerationRequest struct {
	Prompt  string
	Persona Persona
	User    UserProfile
	History []Turn
	Mode    Mode
	// Topic is consulted in group mode only. Empty means the assembler
	// picks one of the stock topics.
	Topic string
}

// GenerationResult carries the final reply text plus the token usage the
// upstream reported for the call.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
